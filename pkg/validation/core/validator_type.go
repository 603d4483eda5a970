package core

import "reflect"

// Accepts 以类型参数声明验证器的接受类型
// 嵌入到验证器结构体中即可实现 Validator.AcceptedType：
//
//	type LengthValidator struct {
//	    core.Accepts[string]
//	    min, max int
//	}
type Accepts[T any] struct{}

// AcceptedType 实现 Validator 接口
func (Accepts[T]) AcceptedType() reflect.Type {
	return reflect.TypeFor[T]()
}

// validatorType ValidatorType 的默认实现
type validatorType struct {
	name     string
	accepted reflect.Type
	ctor     func() (Validator, error)
}

// ValidatorOf 由验证器结构体类型创建 ValidatorType
// 接受类型从零值实例上读取，New 每次返回 new(V)
func ValidatorOf[V any, P interface {
	*V
	Validator
}]() ValidatorType {
	return &validatorType{
		name:     reflect.TypeFor[V]().String(),
		accepted: P(new(V)).AcceptedType(),
		ctor: func() (Validator, error) {
			return P(new(V)), nil
		},
	}
}

// NewValidatorType 使用自定义无参构造函数创建 ValidatorType
func NewValidatorType(name string, accepted reflect.Type, ctor func() (Validator, error)) ValidatorType {
	return &validatorType{
		name:     name,
		accepted: accepted,
		ctor:     ctor,
	}
}

// Name 实现 ValidatorType 接口
func (t *validatorType) Name() string {
	return t.name
}

// AcceptedType 实现 ValidatorType 接口
func (t *validatorType) AcceptedType() reflect.Type {
	return t.accepted
}

// New 实现 ValidatorType 接口
func (t *validatorType) New() (Validator, error) {
	return t.ctor()
}
