// Package validation 模型字段约束解析与验证的入口
//
// 每个模型类型第一次被请求时扫描一次字段约束，解析出已初始化的验证器并缓存，
// 之后的请求直接复用同一份验证计划：
//
//	type User struct {
//	    ID    uint
//	    Name  string `check:"notblank(message='name is required',msgid=1001);length(max=32)"`
//	    Email string `check:"email"`
//	    Temp  string `gorm:"-" check:"notblank"` // 不持久化，不参与验证
//	}
//
//	defs, err := validation.GetValidationsForModel(&User{})
//	err = validation.Validate(&User{Name: "tom", Email: "tom@example.com"})
package validation

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"katydid-common-validation/pkg/config"
	"katydid-common-validation/pkg/logger"
	"katydid-common-validation/pkg/validation/builder"
	"katydid-common-validation/pkg/validation/cache"
	"katydid-common-validation/pkg/validation/constraint"
	"katydid-common-validation/pkg/validation/core"
	"katydid-common-validation/pkg/validation/metadata"
	"katydid-common-validation/pkg/validation/rule"
)

// Engine 组合约束目录、元数据提供者、构建器与计划缓存
type Engine struct {
	registry *constraint.Registry
	provider core.MetadataProvider
	cache    *cache.PlanCache
	logger   *zap.Logger
	failFast bool
}

// engineOptions 引擎构建参数
type engineOptions struct {
	registry *constraint.Registry
	provider core.MetadataProvider
	logger   *zap.Logger
	tagName  string
	failFast bool
}

// Option 引擎选项
type Option func(*engineOptions)

// WithRegistry 使用外部约束目录（不会自动注册内置约束）
func WithRegistry(registry *constraint.Registry) Option {
	return func(o *engineOptions) {
		o.registry = registry
	}
}

// WithProvider 使用自定义元数据提供者
func WithProvider(provider core.MetadataProvider) Option {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithTagName 设置约束标签名（仅对默认元数据提供者生效）
func WithTagName(name string) Option {
	return func(o *engineOptions) {
		o.tagName = name
	}
}

// WithFailFast 验证实例时遇到第一个违规即停止
func WithFailFast(failFast bool) Option {
	return func(o *engineOptions) {
		o.failFast = failFast
	}
}

// NewEngine 创建引擎
// 未指定约束目录时创建新目录并注册内置约束
func NewEngine(opts ...Option) (*Engine, error) {
	o := &engineOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	if o.registry == nil {
		o.registry = constraint.NewRegistry()
		if err := rule.RegisterBuiltins(o.registry); err != nil {
			return nil, err
		}
	}

	if o.provider == nil {
		o.provider = metadata.NewGormProvider(o.registry, metadata.WithTagName(o.tagName))
	}

	b := builder.New(o.provider, o.registry, builder.WithLogger(o.logger))

	return &Engine{
		registry: o.registry,
		provider: o.provider,
		cache:    cache.New(b, cache.WithLogger(o.logger)),
		logger:   o.logger,
		failFast: o.failFast,
	}, nil
}

// NewEngineFromConfig 按配置创建引擎与日志器
func NewEngineFromConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithLogger(log.Named("validation")),
		WithTagName(cfg.Validation.TagName),
		WithFailFast(cfg.Validation.FailFast),
	}
	return NewEngine(append(base, opts...)...)
}

// Registry 约束目录，可继续注册自定义约束
func (e *Engine) Registry() *constraint.Registry {
	return e.registry
}

// Stats 计划缓存统计
func (e *Engine) Stats() cache.Stats {
	return e.cache.Stats()
}

// Plan 获取模型的验证计划
// model 可以是实例、指针或 reflect.Type
func (e *Engine) Plan(model any) (*core.ValidationPlan, error) {
	modelType, err := ModelTypeOf(model)
	if err != nil {
		return nil, err
	}
	return e.cache.Get(modelType)
}

// GetValidationsForModel 获取模型的有序验证定义
// 对同一模型类型重复调用返回相同的验证器实例
func (e *Engine) GetValidationsForModel(model any) ([]*core.ValidationDefinition, error) {
	plan, err := e.Plan(model)
	if err != nil {
		return nil, err
	}
	return plan.Definitions(), nil
}

// ModelTypeOf 取模型的结构体类型（解开指针）
func ModelTypeOf(model any) (reflect.Type, error) {
	var t reflect.Type
	if rt, ok := model.(reflect.Type); ok {
		t = rt
	} else {
		t = reflect.TypeOf(model)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: nil", core.ErrInvalidModel)
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidModel, t)
	}
	return t, nil
}

// ============================================================================
// 全局门面
// ============================================================================

var (
	defaultEngine *Engine
	defaultErr    error
	once          sync.Once
)

// Default 获取进程级默认引擎（单例）
// 使用 constraint.Default() 目录并补齐其中缺少的内置约束
func Default() (*Engine, error) {
	once.Do(func() {
		registry := constraint.Default()
		if err := rule.EnsureBuiltins(registry); err != nil {
			defaultErr = err
			return
		}
		defaultEngine, defaultErr = NewEngine(WithRegistry(registry))
	})
	return defaultEngine, defaultErr
}

// GetValidationsForModel 使用默认引擎获取模型的验证定义
func GetValidationsForModel(model any) ([]*core.ValidationDefinition, error) {
	e, err := Default()
	if err != nil {
		return nil, err
	}
	return e.GetValidationsForModel(model)
}

// Validate 使用默认引擎验证模型实例
func Validate(model any) error {
	e, err := Default()
	if err != nil {
		return err
	}
	return e.Validate(model)
}
