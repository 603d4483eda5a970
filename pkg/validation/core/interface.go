package core

import "reflect"

// ============================================================================
// 验证器契约 - 由具体规则实现
// ============================================================================

// Validator 字段验证器接口
// 职责：校验单个字段值是否满足某个约束
// 设计原则：初始化之后只读，可被多个 goroutine 并发调用 Validate
type Validator interface {
	// AcceptedType 验证器能够校验的值类型
	AcceptedType() reflect.Type

	// Initialize 读取约束标记上的参数
	Initialize(marker ConstraintMarker) error

	// Validate 校验字段值，返回 true 表示通过
	Validate(value any) bool
}

// ValidatorType 验证器类型描述
// 相当于"验证器类"：可以在不创建实例的情况下查询接受类型，并以无参方式构造实例
type ValidatorType interface {
	// Name 验证器类型名，用于诊断信息
	Name() string

	// AcceptedType 声明的接受类型
	AcceptedType() reflect.Type

	// New 无参构造一个新的验证器实例
	New() (Validator, error)
}

// ============================================================================
// 约束标记 - 由宿主的声明方式提供
// ============================================================================

// ConstraintMarker 附加在字段上的约束声明
//
// 每种标记都必须通过方法或导出字段提供 Message 和 MessageResID 两个访问器，
// 构建器按名字反射读取它们。
type ConstraintMarker interface {
	// Kind 约束种类名（如 notnull、length）
	Kind() string
}

// ConstraintCatalog 约束种类目录
// 职责：给出某个约束标记的候选验证器列表（有序）
type ConstraintCatalog interface {
	Candidates(marker ConstraintMarker) ([]ValidatorType, error)
}

// ConstraintDeclarer 模型可选实现的接口，用代码声明字段约束
// 返回格式：map[字段名][]约束标记，追加在结构体标签声明的约束之后
type ConstraintDeclarer interface {
	DeclareConstraints() map[string][]ConstraintMarker
}

// ============================================================================
// 元数据提供者 - 由宿主的持久化框架适配
// ============================================================================

// MetadataProvider 模型元数据提供者
// 职责：按声明顺序列出模型类型的字段，以及每个字段的存储信息和约束标记
type MetadataProvider interface {
	Fields(modelType reflect.Type) ([]FieldDescriptor, error)
}

// PlanBuilder 验证计划构建器接口
type PlanBuilder interface {
	Build(modelType reflect.Type) (*ValidationPlan, error)
}
