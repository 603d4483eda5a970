// Package resolver 在约束的候选验证器中选出接受字段类型的那一个
package resolver

import (
	"reflect"

	"katydid-common-validation/pkg/validation/core"
)

// boxedKinds 基本类型表，这些类型与其指针（可空）形式视为等价
var boxedKinds = map[reflect.Kind]struct{}{
	reflect.Bool:       {},
	reflect.Int:        {},
	reflect.Int8:       {},
	reflect.Int16:      {},
	reflect.Int32:      {},
	reflect.Int64:      {},
	reflect.Uint:       {},
	reflect.Uint8:      {},
	reflect.Uint16:     {},
	reflect.Uint32:     {},
	reflect.Uint64:     {},
	reflect.Uintptr:    {},
	reflect.Float32:    {},
	reflect.Float64:    {},
	reflect.Complex64:  {},
	reflect.Complex128: {},
}

// Box 把基本类型映射为其指针形式，其他类型原样返回
func Box(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	if _, ok := boxedKinds[t.Kind()]; ok {
		return reflect.PointerTo(t)
	}
	return t
}

// Compatible 判断接受类型是否与字段类型相同或是其"超类型"（字段类型可赋值给它）
// 两侧都先做装箱归一化，因此 int 与 *int 双向等价
func Compatible(accepted, fieldType reflect.Type) bool {
	if accepted == nil || fieldType == nil {
		return false
	}
	return Box(fieldType).AssignableTo(Box(accepted))
}

// Resolve 按声明顺序返回第一个兼容字段类型的候选验证器
// 多个候选都兼容时第一个胜出；没有兼容候选时返回 false
func Resolve(candidates []core.ValidatorType, fieldType reflect.Type) (core.ValidatorType, bool) {
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if Compatible(candidate.AcceptedType(), fieldType) {
			return candidate, true
		}
	}
	return nil, false
}
