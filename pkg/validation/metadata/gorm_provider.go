// Package metadata 基于 gorm schema 的模型元数据提供者
package metadata

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"gorm.io/gorm/schema"

	"katydid-common-validation/pkg/validation/core"
)

// MarkerFactory 按种类名和参数创建约束标记
type MarkerFactory interface {
	NewMarker(kind string, params map[string]string) (core.ConstraintMarker, error)
}

// GormProvider 用 gorm 的 schema 解析结果描述模型
// 字段顺序与列名完全遵循 gorm：嵌入结构体被展开，gorm:"-" 字段没有列名
type GormProvider struct {
	factory MarkerFactory
	tagName string
	namer   schema.Namer
	schemas *sync.Map // gorm schema 缓存
}

// Option 提供者选项
type Option func(*GormProvider)

// WithTagName 设置约束标签名
func WithTagName(name string) Option {
	return func(p *GormProvider) {
		if name != "" {
			p.tagName = name
		}
	}
}

// WithNamer 设置列名命名策略，需要与宿主 gorm.Config 的 NamingStrategy 一致
func WithNamer(namer schema.Namer) Option {
	return func(p *GormProvider) {
		if namer != nil {
			p.namer = namer
		}
	}
}

// NewGormProvider 创建元数据提供者
func NewGormProvider(factory MarkerFactory, opts ...Option) *GormProvider {
	p := &GormProvider{
		factory: factory,
		tagName: DefaultTagName,
		namer:   schema.NamingStrategy{},
		schemas: &sync.Map{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TagName 当前使用的约束标签名
func (p *GormProvider) TagName() string {
	return p.tagName
}

// Fields 实现 core.MetadataProvider 接口
func (p *GormProvider) Fields(modelType reflect.Type) ([]core.FieldDescriptor, error) {
	if modelType == nil {
		return nil, fmt.Errorf("%w: nil", core.ErrInvalidModel)
	}
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidModel, modelType)
	}

	prototype := reflect.New(modelType).Interface()

	s, err := schema.Parse(prototype, p.schemas, p.namer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %w", core.ErrModelMetadata, modelType, err)
	}

	declared := declaredConstraints(prototype)
	used := make(map[string]struct{}, len(declared))

	fields := make([]core.FieldDescriptor, 0, len(s.Fields))
	for _, f := range s.Fields {
		markers, err := p.tagMarkers(f.Tag.Get(p.tagName))
		if err != nil {
			return nil, fmt.Errorf("%w: %v.%s: %w", core.ErrModelMetadata, modelType, f.Name, err)
		}

		if extra, ok := declared[f.Name]; ok {
			markers = append(markers, extra...)
			used[f.Name] = struct{}{}
		}

		fields = append(fields, core.FieldDescriptor{
			Name:        f.Name,
			Type:        f.FieldType,
			Index:       structIndex(f.StructField.Index),
			StorageName: f.DBName,
			Markers:     markers,
		})
	}

	if len(used) != len(declared) {
		return nil, fmt.Errorf("%w: %v declares constraints on unknown fields %v",
			core.ErrModelMetadata, modelType, unknownFields(declared, used))
	}

	return fields, nil
}

// tagMarkers 把标签解析成约束标记
func (p *GormProvider) tagMarkers(tag string) ([]core.ConstraintMarker, error) {
	if tag == "" || tag == "-" {
		return nil, nil
	}

	parsed, err := parseTag(tag)
	if err != nil {
		return nil, err
	}

	markers := make([]core.ConstraintMarker, 0, len(parsed))
	for _, tm := range parsed {
		marker, err := p.factory.NewMarker(tm.kind, tm.params)
		if err != nil {
			return nil, err
		}
		markers = append(markers, marker)
	}
	return markers, nil
}

// declaredConstraints 读取模型通过代码声明的约束
func declaredConstraints(prototype any) map[string][]core.ConstraintMarker {
	if declarer, ok := prototype.(core.ConstraintDeclarer); ok {
		return declarer.DeclareConstraints()
	}
	return nil
}

// structIndex gorm 用负数表示经过指针的嵌入字段，这里还原为普通索引
func structIndex(index []int) []int {
	out := make([]int, len(index))
	for i, idx := range index {
		if idx < 0 {
			idx = -idx - 1
		}
		out[i] = idx
	}
	return out
}

func unknownFields(declared map[string][]core.ConstraintMarker, used map[string]struct{}) []string {
	var names []string
	for name := range declared {
		if _, ok := used[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
