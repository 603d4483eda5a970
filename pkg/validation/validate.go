package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"katydid-common-validation/pkg/validation/core"
)

// ErrValidationFailed 模型实例未通过验证
var ErrValidationFailed = errors.New("validation failed")

// Violation 一条字段违规
// 设计原则：值对象模式，不可变
type Violation struct {
	Field        string // 字段名
	Storage      string // 列名
	Kind         string // 约束种类
	Message      string // 错误消息
	MessageResID int    // 错误消息资源ID
}

// Error 实现 error 接口
func (v Violation) Error() string {
	if v.Message != "" {
		return v.Message
	}
	return fmt.Sprintf("Field '%s' failed validation on constraint '%s'", v.Field, v.Kind)
}

// ValidationError 验证错误，按计划顺序列出所有违规
type ValidationError struct {
	Model      reflect.Type
	Violations []Violation
}

// Error 实现 error 接口
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidationFailed.Error()
	}

	messages := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		messages[i] = v.Error()
	}
	return fmt.Sprintf("%s: %v: %s", ErrValidationFailed, e.Model, strings.Join(messages, "; "))
}

// Is 支持 errors.Is(err, ErrValidationFailed)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// First 第一条违规
func (e *ValidationError) First() (Violation, bool) {
	if len(e.Violations) == 0 {
		return Violation{}, false
	}
	return e.Violations[0], true
}

// Validate 按缓存的验证计划验证模型实例
// 通过返回 nil，否则返回 *ValidationError
func (e *Engine) Validate(model any) error {
	rv := reflect.ValueOf(model)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("%w: nil %v", core.ErrInvalidModel, rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T", core.ErrInvalidModel, model)
	}

	plan, err := e.cache.Get(rv.Type())
	if err != nil {
		return err
	}

	var violations []Violation
	for _, def := range plan.Definitions() {
		if def.Validator().Validate(fieldValue(rv, def.FieldIndex())) {
			continue
		}

		violations = append(violations, Violation{
			Field:        def.FieldName(),
			Storage:      def.StorageName(),
			Kind:         def.Kind(),
			Message:      def.Message(),
			MessageResID: def.MessageResID(),
		})
		if e.failFast {
			break
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Model: rv.Type(), Violations: violations}
}

// fieldValue 按索引取字段值，经过 nil 嵌入指针时返回 nil
func fieldValue(rv reflect.Value, index []int) any {
	field, err := rv.FieldByIndexErr(index)
	if err != nil || !field.IsValid() || !field.CanInterface() {
		return nil
	}
	return field.Interface()
}
