// Package constraint 约束种类目录：约束种类 -> 标记结构体类型 + 有序候选验证器
package constraint

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"katydid-common-validation/pkg/validation/core"
)

// ParamTag 标记结构体字段上用于参数解码的标签名
const ParamTag = "param"

var (
	// ErrInvalidKind 约束种类名不合法
	ErrInvalidKind = errors.New("invalid constraint kind")

	// ErrConstraintExists 约束种类已注册
	ErrConstraintExists = errors.New("constraint already registered")

	// ErrNoCandidates 注册时没有提供候选验证器
	ErrNoCandidates = errors.New("constraint has no candidate validators")

	// ErrInvalidParams 标记参数无法解码
	ErrInvalidParams = errors.New("invalid constraint params")
)

// kindFormatRegex 约束种类名：小写字母开头，只含小写字母、数字、下划线
var kindFormatRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// entry 一个约束种类的注册信息
type entry struct {
	markerType reflect.Type // 标记结构体类型（非指针）
	pointer    bool         // 标记是否以指针形式实现 ConstraintMarker
	candidates []core.ValidatorType
}

// Registry 约束目录，实现 core.ConstraintCatalog
type Registry struct {
	entries map[string]*entry
	mu      sync.RWMutex
}

var (
	defaultRegistry *Registry
	registryOnce    sync.Once
)

// Default 获取进程级默认目录
func Default() *Registry {
	registryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry 创建空目录
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Register 注册约束种类
// prototype 是标记的零值（结构体或结构体指针），种类名取自 prototype.Kind()
// candidates 的顺序即解析时的优先顺序
func (r *Registry) Register(prototype core.ConstraintMarker, candidates ...core.ValidatorType) error {
	if prototype == nil {
		return fmt.Errorf("%w: nil prototype", ErrInvalidKind)
	}

	kind := prototype.Kind()
	if !kindFormatRegex.MatchString(kind) {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	if len(candidates) == 0 {
		return fmt.Errorf("%w: %s", ErrNoCandidates, kind)
	}
	for i, candidate := range candidates {
		if candidate == nil {
			return fmt.Errorf("%w: %s candidate #%d is nil", ErrNoCandidates, kind, i)
		}
	}

	markerType := reflect.TypeOf(prototype)
	pointer := markerType.Kind() == reflect.Pointer
	if pointer {
		markerType = markerType.Elem()
	}
	if markerType.Kind() != reflect.Struct {
		return fmt.Errorf("%w: marker %v is not a struct", ErrInvalidKind, markerType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[kind]; exists {
		return fmt.Errorf("%w: %s", ErrConstraintExists, kind)
	}

	list := make([]core.ValidatorType, len(candidates))
	copy(list, candidates)

	r.entries[kind] = &entry{
		markerType: markerType,
		pointer:    pointer,
		candidates: list,
	}
	return nil
}

// MustRegister 注册失败时 panic，用于包初始化
func (r *Registry) MustRegister(prototype core.ConstraintMarker, candidates ...core.ValidatorType) {
	if err := r.Register(prototype, candidates...); err != nil {
		panic(err)
	}
}

// Candidates 实现 core.ConstraintCatalog 接口
func (r *Registry) Candidates(marker core.ConstraintMarker) ([]core.ValidatorType, error) {
	if marker == nil {
		return nil, fmt.Errorf("%w: nil marker", core.ErrUnknownConstraint)
	}

	e, err := r.lookup(marker.Kind())
	if err != nil {
		return nil, err
	}

	list := make([]core.ValidatorType, len(e.candidates))
	copy(list, e.candidates)
	return list, nil
}

// NewMarker 按种类名创建标记，params 解码到标记结构体中带 param 标签的字段
func (r *Registry) NewMarker(kind string, params map[string]string) (core.ConstraintMarker, error) {
	e, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}

	ptr := reflect.New(e.markerType)
	if len(params) > 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          ParamTag,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           ptr.Interface(),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParams, kind, err)
		}
		if err := decoder.Decode(params); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParams, kind, err)
		}
	}

	if e.pointer {
		return ptr.Interface().(core.ConstraintMarker), nil
	}
	return ptr.Elem().Interface().(core.ConstraintMarker), nil
}

// Has 约束种类是否已注册
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.entries[kind]
	return exists
}

// Kinds 列出已注册的约束种类（排序）
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.entries))
	for kind := range r.entries {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func (r *Registry) lookup(kind string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[kind]
	if !exists {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownConstraint, kind)
	}
	return e, nil
}
