// Package hook 在 gorm 保存模型之前执行验证
package hook

import (
	"reflect"

	"gorm.io/gorm"

	"katydid-common-validation/pkg/validation"
)

const (
	// CreateCallbackName 创建前回调名
	CreateCallbackName = "validation:before_create"

	// UpdateCallbackName 更新前回调名
	UpdateCallbackName = "validation:before_update"
)

// Register 在 gorm:create 与 gorm:update 之前注册验证回调
// 验证失败时错误加入 Statement，保存被中止
func Register(db *gorm.DB, engine *validation.Engine) error {
	callback := db.Callback()

	if err := callback.Create().Before("gorm:create").Register(CreateCallbackName, validateStatement(engine)); err != nil {
		return err
	}
	return callback.Update().Before("gorm:update").Register(UpdateCallbackName, validateStatement(engine))
}

// validateStatement 验证 Statement 中的结构体或结构体切片
func validateStatement(engine *validation.Engine) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.Statement.Schema == nil {
			return
		}

		// Updates(map) / Update(column, value) 只写部分列，模型上的旧值不验证
		switch db.Statement.Dest.(type) {
		case map[string]interface{}, []map[string]interface{}:
			return
		}

		rv := db.Statement.ReflectValue
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				if err := validateValue(engine, rv.Index(i)); err != nil {
					_ = db.AddError(err)
					return
				}
			}
		case reflect.Struct:
			if err := validateValue(engine, rv); err != nil {
				_ = db.AddError(err)
			}
		}
	}
}

func validateValue(engine *validation.Engine, rv reflect.Value) error {
	rv = reflect.Indirect(rv)
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return engine.Validate(rv.Interface())
}
