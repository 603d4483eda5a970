package core

import (
	"fmt"
	"reflect"
)

// FieldDescriptor 字段描述
// 由元数据提供者创建，获取之后只读
type FieldDescriptor struct {
	Name        string             // 结构体字段名
	Type        reflect.Type       // 声明的值类型
	Index       []int              // 用于 reflect.Value.FieldByIndex 的索引路径
	StorageName string             // 存储列名，空表示字段不持久化
	Markers     []ConstraintMarker // 按附加顺序排列的约束标记
}

// HasStorage 字段是否带有持久化存储元数据
func (f FieldDescriptor) HasStorage() bool {
	return f.StorageName != ""
}

// ============================================================================
// 验证定义 / 验证计划
// ============================================================================

// ValidationDefinition 一个字段与一个已初始化验证器的组合
// 设计原则：值对象模式，创建后不可变
type ValidationDefinition struct {
	fieldName    string
	storageName  string
	fieldIndex   []int
	kind         string
	validator    Validator
	message      string
	messageResID int
}

// NewValidationDefinition 创建验证定义
func NewValidationDefinition(field FieldDescriptor, kind string, validator Validator, message string, messageResID int) *ValidationDefinition {
	index := make([]int, len(field.Index))
	copy(index, field.Index)

	return &ValidationDefinition{
		fieldName:    field.Name,
		storageName:  field.StorageName,
		fieldIndex:   index,
		kind:         kind,
		validator:    validator,
		message:      message,
		messageResID: messageResID,
	}
}

// FieldName 字段名
func (d *ValidationDefinition) FieldName() string {
	return d.fieldName
}

// StorageName 存储列名
func (d *ValidationDefinition) StorageName() string {
	return d.storageName
}

// FieldIndex 字段索引路径（副本）
func (d *ValidationDefinition) FieldIndex() []int {
	index := make([]int, len(d.fieldIndex))
	copy(index, d.fieldIndex)
	return index
}

// Kind 约束种类
func (d *ValidationDefinition) Kind() string {
	return d.kind
}

// Validator 已初始化的验证器实例
func (d *ValidationDefinition) Validator() Validator {
	return d.validator
}

// Message 错误消息文本
func (d *ValidationDefinition) Message() string {
	return d.message
}

// MessageResID 错误消息资源ID，0 表示未设置
func (d *ValidationDefinition) MessageResID() int {
	return d.messageResID
}

// String 调试输出
func (d *ValidationDefinition) String() string {
	return fmt.Sprintf("%s(%s)/%s", d.fieldName, d.storageName, d.kind)
}

// ValidationPlan 一个模型类型的完整验证计划
// 顺序：字段声明顺序，其次是字段上约束的附加顺序
type ValidationPlan struct {
	modelType   reflect.Type
	definitions []*ValidationDefinition
}

// NewValidationPlan 创建验证计划，definitions 会被复制
func NewValidationPlan(modelType reflect.Type, definitions []*ValidationDefinition) *ValidationPlan {
	defs := make([]*ValidationDefinition, len(definitions))
	copy(defs, definitions)

	return &ValidationPlan{
		modelType:   modelType,
		definitions: defs,
	}
}

// ModelType 计划对应的模型类型
func (p *ValidationPlan) ModelType() reflect.Type {
	return p.modelType
}

// Definitions 返回验证定义列表
// 返回的切片是副本，其中的定义指针与计划共享
func (p *ValidationPlan) Definitions() []*ValidationDefinition {
	defs := make([]*ValidationDefinition, len(p.definitions))
	copy(defs, p.definitions)
	return defs
}

// Len 定义数量
func (p *ValidationPlan) Len() int {
	return len(p.definitions)
}

// IsEmpty 模型上是否没有任何约束
func (p *ValidationPlan) IsEmpty() bool {
	return len(p.definitions) == 0
}
