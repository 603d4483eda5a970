package builder

import (
	"errors"
	"fmt"
	"reflect"
)

const (
	// AccessorMessage 每种约束标记都必须提供的消息文本访问器
	AccessorMessage = "Message"

	// AccessorMessageResID 每种约束标记都必须提供的消息资源ID访问器
	AccessorMessageResID = "MessageResID"
)

var errAccessorMissing = errors.New("accessor not found")

// readAccessor 按名字反射读取标记上的访问器
// 先找无参方法，再找导出字段
func readAccessor(marker any, name string) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			val = nil
			err = fmt.Errorf("accessor %s panicked: %v", name, r)
		}
	}()

	v := reflect.ValueOf(marker)
	if !v.IsValid() {
		return nil, errAccessorMissing
	}

	if method := v.MethodByName(name); method.IsValid() {
		mt := method.Type()
		if mt.NumIn() != 0 || mt.NumOut() == 0 {
			return nil, fmt.Errorf("accessor %s has signature %v", name, mt)
		}
		return method.Call(nil)[0].Interface(), nil
	}

	sv := reflect.Indirect(v)
	if sv.Kind() == reflect.Struct {
		if field := sv.FieldByName(name); field.IsValid() && field.CanInterface() {
			return field.Interface(), nil
		}
	}

	return nil, errAccessorMissing
}

// toMessage 消息文本，值缺失时为空串
func toMessage(val any) string {
	if val == nil {
		return ""
	}

	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		val = rv.Elem().Interface()
	}

	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

// toResID 消息资源ID，值不是数字时为 0
func toResID(val any) int {
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return int(rv.Float())
	default:
		return 0
	}
}
