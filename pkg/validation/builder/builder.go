// Package builder 扫描模型字段，把约束标记解析成已初始化的验证定义
package builder

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"katydid-common-validation/pkg/validation/core"
	"katydid-common-validation/pkg/validation/resolver"
)

var errNilValidator = errors.New("constructor returned nil validator")

// Builder 验证计划构建器
// 设计原则：只依赖元数据提供者与约束目录两个接口，不关心模型如何声明
type Builder struct {
	provider core.MetadataProvider
	catalog  core.ConstraintCatalog
	logger   *zap.Logger
}

// Option 构建器选项
type Option func(*Builder)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New 创建构建器
func New(provider core.MetadataProvider, catalog core.ConstraintCatalog, opts ...Option) *Builder {
	b := &Builder{
		provider: provider,
		catalog:  catalog,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 构建模型类型的验证计划
// 任何一个约束失败都会放弃整个计划，不返回部分结果
func (b *Builder) Build(modelType reflect.Type) (*core.ValidationPlan, error) {
	start := time.Now()

	fields, err := b.provider.Fields(modelType)
	if err != nil {
		if !errors.Is(err, core.ErrModelMetadata) && !errors.Is(err, core.ErrInvalidModel) {
			err = fmt.Errorf("%w: %v: %w", core.ErrModelMetadata, modelType, err)
		}
		return nil, err
	}

	definitions := make([]*core.ValidationDefinition, 0, len(fields))
	for _, field := range fields {
		// 不持久化的字段不参与验证
		if !field.HasStorage() {
			continue
		}

		for _, marker := range field.Markers {
			def, err := b.define(field, marker)
			if err != nil {
				b.logger.Warn("validation plan build failed",
					zap.Stringer("model", modelType),
					zap.String("field", field.Name),
					zap.Error(err))
				return nil, err
			}
			definitions = append(definitions, def)
		}
	}

	plan := core.NewValidationPlan(modelType, definitions)

	b.logger.Debug("validation plan built",
		zap.Stringer("model", modelType),
		zap.Int("fields", len(fields)),
		zap.Int("definitions", plan.Len()),
		zap.Duration("elapsed", time.Since(start)))

	return plan, nil
}

// define 为一个字段上的一个约束标记创建验证定义
func (b *Builder) define(field core.FieldDescriptor, marker core.ConstraintMarker) (*core.ValidationDefinition, error) {
	candidates, err := b.catalog.Candidates(marker)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", field.Name, err)
	}

	validatorType, ok := resolver.Resolve(candidates, field.Type)
	if !ok {
		return nil, &core.UnresolvedValidatorError{
			ConstraintKind: marker.Kind(),
			FieldName:      field.Name,
			FieldType:      field.Type,
		}
	}

	validator, err := instantiate(validatorType, marker)
	if err != nil {
		return nil, &core.ValidatorInitError{
			ValidatorName: validatorType.Name(),
			FieldName:     field.Name,
			Cause:         err,
		}
	}

	resID, err := readAccessor(marker, AccessorMessageResID)
	if err != nil {
		return nil, &core.MetadataAccessError{
			MarkerType: reflect.TypeOf(marker),
			Accessor:   AccessorMessageResID,
			Cause:      err,
		}
	}

	message, err := readAccessor(marker, AccessorMessage)
	if err != nil {
		return nil, &core.MetadataAccessError{
			MarkerType: reflect.TypeOf(marker),
			Accessor:   AccessorMessage,
			Cause:      err,
		}
	}

	return core.NewValidationDefinition(field, marker.Kind(), validator, toMessage(message), toResID(resID)), nil
}

// instantiate 无参构造验证器并用标记初始化
func instantiate(validatorType core.ValidatorType, marker core.ConstraintMarker) (validator core.Validator, err error) {
	defer func() {
		if r := recover(); r != nil {
			validator = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	validator, err = validatorType.New()
	if err != nil {
		return nil, err
	}
	if validator == nil {
		return nil, errNilValidator
	}

	if err = validator.Initialize(marker); err != nil {
		return nil, err
	}
	return validator, nil
}
