// Package rule 内置约束标记与验证器
package rule

// Meta 所有内置标记共有的消息字段
type Meta struct {
	Message      string `param:"message"` // 错误消息文本
	MessageResID int    `param:"msgid"`   // 错误消息资源ID
}

// NotNull 非空约束：指针、切片、map、接口不能为 nil
type NotNull struct {
	Meta `param:",squash"`
}

// Kind 实现 core.ConstraintMarker 接口
func (NotNull) Kind() string { return "notnull" }

// NotBlank 非空白约束：字符串去掉空白后不能为空
type NotBlank struct {
	Meta `param:",squash"`
}

// Kind 实现 core.ConstraintMarker 接口
func (NotBlank) Kind() string { return "notblank" }

// Length 长度约束，Max 为 0 表示不限上限
type Length struct {
	Meta `param:",squash"`
	Min  int `param:"min"`
	Max  int `param:"max"`
}

// Kind 实现 core.ConstraintMarker 接口
func (Length) Kind() string { return "length" }

// Range 数值范围约束，边界为 nil 表示不限
type Range struct {
	Meta `param:",squash"`
	Min  *float64 `param:"min"`
	Max  *float64 `param:"max"`
}

// Kind 实现 core.ConstraintMarker 接口
func (Range) Kind() string { return "range" }

// Pattern 正则约束
type Pattern struct {
	Meta   `param:",squash"`
	Regexp string `param:"regexp"`
}

// Kind 实现 core.ConstraintMarker 接口
func (Pattern) Kind() string { return "pattern" }

// Email 邮箱格式约束
type Email struct {
	Meta `param:",squash"`
}

// Kind 实现 core.ConstraintMarker 接口
func (Email) Kind() string { return "email" }

// URL URL 格式约束
type URL struct {
	Meta `param:",squash"`
}

// Kind 实现 core.ConstraintMarker 接口
func (URL) Kind() string { return "url" }

// OneOf 枚举约束，Values 以空格分隔
type OneOf struct {
	Meta   `param:",squash"`
	Values string `param:"values"`
}

// Kind 实现 core.ConstraintMarker 接口
func (OneOf) Kind() string { return "oneof" }
