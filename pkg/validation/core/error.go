package core

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrUnresolvedValidator 约束的候选验证器中没有一个接受字段类型
	ErrUnresolvedValidator = errors.New("unresolved validator")

	// ErrValidatorInitialization 验证器构造或初始化失败
	ErrValidatorInitialization = errors.New("validator initialization failed")

	// ErrMetadataAccess 无法读取约束标记的消息访问器
	ErrMetadataAccess = errors.New("constraint metadata access failed")

	// ErrUnknownConstraint 约束种类没有注册候选验证器
	ErrUnknownConstraint = errors.New("unknown constraint")

	// ErrModelMetadata 宿主元数据提供者无法描述模型
	ErrModelMetadata = errors.New("model metadata unavailable")

	// ErrInvalidModel 模型不是结构体类型
	ErrInvalidModel = errors.New("invalid model type")
)

// UnresolvedValidatorError 约束没有匹配字段类型的验证器
type UnresolvedValidatorError struct {
	ConstraintKind string
	FieldName      string
	FieldType      reflect.Type
}

// Error 实现 error 接口
func (e *UnresolvedValidatorError) Error() string {
	return fmt.Sprintf("%s: constraint %q does not validate type %v (field %s)",
		ErrUnresolvedValidator, e.ConstraintKind, e.FieldType, e.FieldName)
}

// Is 支持 errors.Is(err, ErrUnresolvedValidator)
func (e *UnresolvedValidatorError) Is(target error) bool {
	return target == ErrUnresolvedValidator
}

// ValidatorInitError 验证器构造或 Initialize 失败
type ValidatorInitError struct {
	ValidatorName string
	FieldName     string
	Cause         error
}

// Error 实现 error 接口
func (e *ValidatorInitError) Error() string {
	return fmt.Sprintf("%s: validator %s for field %s: %v",
		ErrValidatorInitialization, e.ValidatorName, e.FieldName, e.Cause)
}

// Is 支持 errors.Is(err, ErrValidatorInitialization)
func (e *ValidatorInitError) Is(target error) bool {
	return target == ErrValidatorInitialization
}

// Unwrap 返回底层原因
func (e *ValidatorInitError) Unwrap() error {
	return e.Cause
}

// MetadataAccessError 约束标记缺少或无法调用消息访问器
type MetadataAccessError struct {
	MarkerType reflect.Type
	Accessor   string
	Cause      error
}

// Error 实现 error 接口
func (e *MetadataAccessError) Error() string {
	return fmt.Sprintf("%s: marker %v must define %s: %v",
		ErrMetadataAccess, e.MarkerType, e.Accessor, e.Cause)
}

// Is 支持 errors.Is(err, ErrMetadataAccess)
func (e *MetadataAccessError) Is(target error) bool {
	return target == ErrMetadataAccess
}

// Unwrap 返回底层原因
func (e *MetadataAccessError) Unwrap() error {
	return e.Cause
}
