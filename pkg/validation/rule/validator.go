package rule

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"katydid-common-validation/pkg/validation/core"
)

// ErrMarkerMismatch 验证器收到了不属于它的约束标记
var ErrMarkerMismatch = errors.New("unexpected constraint marker")

// playground 格式类校验复用 go-playground/validator，实例并发安全
var playground = validator.New()

// indirect 解开指针，nil 返回 false
func indirect(value any) (reflect.Value, bool) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

func mismatch(want string, got core.ConstraintMarker) error {
	return fmt.Errorf("%w: want %s, got %T", ErrMarkerMismatch, want, got)
}

// ============================================================================
// notnull
// ============================================================================

// NotNullValidator 接受任意类型
type NotNullValidator struct {
	core.Accepts[any]
}

// Initialize 实现 core.Validator 接口
func (v *NotNullValidator) Initialize(marker core.ConstraintMarker) error {
	if _, ok := marker.(NotNull); !ok {
		return mismatch("notnull", marker)
	}
	return nil
}

// Validate 实现 core.Validator 接口
func (v *NotNullValidator) Validate(value any) bool {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Invalid:
		return false
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}

// ============================================================================
// notblank
// ============================================================================

// NotBlankValidator 字符串非空白
type NotBlankValidator struct {
	core.Accepts[string]
}

// Initialize 实现 core.Validator 接口
func (v *NotBlankValidator) Initialize(marker core.ConstraintMarker) error {
	if _, ok := marker.(NotBlank); !ok {
		return mismatch("notblank", marker)
	}
	return nil
}

// Validate 实现 core.Validator 接口
func (v *NotBlankValidator) Validate(value any) bool {
	rv, ok := indirect(value)
	if !ok || rv.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(rv.String()) != ""
}

// ============================================================================
// length
// ============================================================================

type lengthBounds struct {
	min, max int
}

func (b *lengthBounds) init(marker core.ConstraintMarker) error {
	m, ok := marker.(Length)
	if !ok {
		return mismatch("length", marker)
	}
	if m.Min < 0 || m.Max < 0 || (m.Max > 0 && m.Min > m.Max) {
		return fmt.Errorf("invalid length bounds min=%d max=%d", m.Min, m.Max)
	}
	b.min, b.max = m.Min, m.Max
	return nil
}

func (b *lengthBounds) within(n int) bool {
	return n >= b.min && (b.max == 0 || n <= b.max)
}

// LengthValidator 字符串长度（按字符计）
type LengthValidator struct {
	core.Accepts[string]
	lengthBounds
}

// Initialize 实现 core.Validator 接口
func (v *LengthValidator) Initialize(marker core.ConstraintMarker) error {
	return v.init(marker)
}

// Validate 实现 core.Validator 接口
func (v *LengthValidator) Validate(value any) bool {
	rv, ok := indirect(value)
	if !ok {
		return true
	}
	return v.within(utf8.RuneCountInString(rv.String()))
}

// BytesLengthValidator 字节切片长度
type BytesLengthValidator struct {
	core.Accepts[[]byte]
	lengthBounds
}

// Initialize 实现 core.Validator 接口
func (v *BytesLengthValidator) Initialize(marker core.ConstraintMarker) error {
	return v.init(marker)
}

// Validate 实现 core.Validator 接口
func (v *BytesLengthValidator) Validate(value any) bool {
	rv, ok := indirect(value)
	if !ok {
		return true
	}
	return v.within(rv.Len())
}

// ============================================================================
// range
// ============================================================================

type rangeBounds struct {
	min, max *float64
}

func (b *rangeBounds) init(marker core.ConstraintMarker) error {
	m, ok := marker.(Range)
	if !ok {
		return mismatch("range", marker)
	}
	if m.Min == nil && m.Max == nil {
		return errors.New("range needs min or max")
	}
	if m.Min != nil && m.Max != nil && *m.Min > *m.Max {
		return fmt.Errorf("invalid range bounds min=%v max=%v", *m.Min, *m.Max)
	}
	b.min, b.max = m.Min, m.Max
	return nil
}

func (b *rangeBounds) within(n float64) bool {
	if b.min != nil && n < *b.min {
		return false
	}
	if b.max != nil && n > *b.max {
		return false
	}
	return true
}

func (b *rangeBounds) check(value any) bool {
	rv, ok := indirect(value)
	if !ok {
		return true
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return b.within(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return b.within(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return b.within(rv.Float())
	default:
		return false
	}
}

// number 范围约束支持的数值类型
type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// RangeValidator 数值范围，T 为接受的字段类型
type RangeValidator[T number] struct {
	core.Accepts[T]
	rangeBounds
}

// Initialize 实现 core.Validator 接口
func (v *RangeValidator[T]) Initialize(marker core.ConstraintMarker) error {
	return v.init(marker)
}

// Validate 实现 core.Validator 接口
func (v *RangeValidator[T]) Validate(value any) bool {
	return v.check(value)
}

// 常用数值类型的范围验证器
type (
	IntRangeValidator     = RangeValidator[int]
	Int8RangeValidator    = RangeValidator[int8]
	Int16RangeValidator   = RangeValidator[int16]
	Int32RangeValidator   = RangeValidator[int32]
	Int64RangeValidator   = RangeValidator[int64]
	UintRangeValidator    = RangeValidator[uint]
	Uint8RangeValidator   = RangeValidator[uint8]
	Uint16RangeValidator  = RangeValidator[uint16]
	Uint32RangeValidator  = RangeValidator[uint32]
	Uint64RangeValidator  = RangeValidator[uint64]
	Float32RangeValidator = RangeValidator[float32]
	FloatRangeValidator   = RangeValidator[float64]
)

// ============================================================================
// pattern
// ============================================================================

// PatternValidator 字符串正则匹配
type PatternValidator struct {
	core.Accepts[string]
	re *regexp.Regexp
}

// Initialize 实现 core.Validator 接口
func (v *PatternValidator) Initialize(marker core.ConstraintMarker) error {
	m, ok := marker.(Pattern)
	if !ok {
		return mismatch("pattern", marker)
	}
	if m.Regexp == "" {
		return errors.New("pattern needs regexp")
	}

	re, err := regexp.Compile(m.Regexp)
	if err != nil {
		return err
	}
	v.re = re
	return nil
}

// Validate 实现 core.Validator 接口
func (v *PatternValidator) Validate(value any) bool {
	rv, ok := indirect(value)
	if !ok {
		return true
	}
	return v.re.MatchString(rv.String())
}

// ============================================================================
// go-playground 格式校验：email / url / oneof
// ============================================================================

// playgroundValidator 用 go-playground 的 tag 校验字符串
type playgroundValidator struct {
	core.Accepts[string]
	tag string
}

// Validate 实现 core.Validator 接口
func (v *playgroundValidator) Validate(value any) bool {
	rv, ok := indirect(value)
	if !ok {
		return true
	}
	return playground.Var(rv.String(), v.tag) == nil
}

// EmailValidator 邮箱格式
type EmailValidator struct {
	playgroundValidator
}

// Initialize 实现 core.Validator 接口
func (v *EmailValidator) Initialize(marker core.ConstraintMarker) error {
	if _, ok := marker.(Email); !ok {
		return mismatch("email", marker)
	}
	v.tag = "email"
	return nil
}

// URLValidator URL 格式
type URLValidator struct {
	playgroundValidator
}

// Initialize 实现 core.Validator 接口
func (v *URLValidator) Initialize(marker core.ConstraintMarker) error {
	if _, ok := marker.(URL); !ok {
		return mismatch("url", marker)
	}
	v.tag = "url"
	return nil
}

// OneOfValidator 枚举值
type OneOfValidator struct {
	playgroundValidator
}

// Initialize 实现 core.Validator 接口
func (v *OneOfValidator) Initialize(marker core.ConstraintMarker) error {
	m, ok := marker.(OneOf)
	if !ok {
		return mismatch("oneof", marker)
	}

	values := strings.Fields(m.Values)
	if len(values) == 0 {
		return errors.New("oneof needs values")
	}
	v.tag = "oneof=" + strings.Join(values, " ")
	return nil
}

// ============================================================================
// *string 字段：可空列复用字符串验证器，nil 的处理与各规则一致
// ============================================================================

// NullableNotBlankValidator *string 非空白，nil 不通过
type NullableNotBlankValidator struct {
	core.Accepts[*string]
	NotBlankValidator
}

// NullableLengthValidator *string 长度
type NullableLengthValidator struct {
	core.Accepts[*string]
	LengthValidator
}

// NullablePatternValidator *string 正则匹配
type NullablePatternValidator struct {
	core.Accepts[*string]
	PatternValidator
}

// NullableEmailValidator *string 邮箱格式
type NullableEmailValidator struct {
	core.Accepts[*string]
	EmailValidator
}

// NullableURLValidator *string URL 格式
type NullableURLValidator struct {
	core.Accepts[*string]
	URLValidator
}

// NullableOneOfValidator *string 枚举值
type NullableOneOfValidator struct {
	core.Accepts[*string]
	OneOfValidator
}
