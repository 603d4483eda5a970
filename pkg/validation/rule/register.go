package rule

import (
	"errors"

	"katydid-common-validation/pkg/validation/constraint"
	"katydid-common-validation/pkg/validation/core"
)

type builtin struct {
	prototype  core.ConstraintMarker
	candidates []core.ValidatorType
}

// builtins 内置约束及候选验证器
// 候选顺序即解析优先级，值类型在前，*string 等可空形式在后
func builtins() []builtin {
	return []builtin{
		{NotNull{}, []core.ValidatorType{core.ValidatorOf[NotNullValidator]()}},
		{NotBlank{}, []core.ValidatorType{
			core.ValidatorOf[NotBlankValidator](),
			core.ValidatorOf[NullableNotBlankValidator](),
		}},
		{Length{}, []core.ValidatorType{
			core.ValidatorOf[LengthValidator](),
			core.ValidatorOf[BytesLengthValidator](),
			core.ValidatorOf[NullableLengthValidator](),
		}},
		{Range{}, []core.ValidatorType{
			core.ValidatorOf[IntRangeValidator](),
			core.ValidatorOf[Int64RangeValidator](),
			core.ValidatorOf[Int32RangeValidator](),
			core.ValidatorOf[Int16RangeValidator](),
			core.ValidatorOf[Int8RangeValidator](),
			core.ValidatorOf[UintRangeValidator](),
			core.ValidatorOf[Uint64RangeValidator](),
			core.ValidatorOf[Uint32RangeValidator](),
			core.ValidatorOf[Uint16RangeValidator](),
			core.ValidatorOf[Uint8RangeValidator](),
			core.ValidatorOf[FloatRangeValidator](),
			core.ValidatorOf[Float32RangeValidator](),
		}},
		{Pattern{}, []core.ValidatorType{
			core.ValidatorOf[PatternValidator](),
			core.ValidatorOf[NullablePatternValidator](),
		}},
		{Email{}, []core.ValidatorType{
			core.ValidatorOf[EmailValidator](),
			core.ValidatorOf[NullableEmailValidator](),
		}},
		{URL{}, []core.ValidatorType{
			core.ValidatorOf[URLValidator](),
			core.ValidatorOf[NullableURLValidator](),
		}},
		{OneOf{}, []core.ValidatorType{
			core.ValidatorOf[OneOfValidator](),
			core.ValidatorOf[NullableOneOfValidator](),
		}},
	}
}

// RegisterBuiltins 把内置约束注册到目录
// 任一种类已存在时返回 constraint.ErrConstraintExists
func RegisterBuiltins(reg *constraint.Registry) error {
	for _, b := range builtins() {
		if err := reg.Register(b.prototype, b.candidates...); err != nil {
			return err
		}
	}
	return nil
}

// EnsureBuiltins 只注册目录中还没有的内置约束，可重复调用
// 已存在的同名种类（包括使用方自己注册的）保持不变
func EnsureBuiltins(reg *constraint.Registry) error {
	for _, b := range builtins() {
		err := reg.Register(b.prototype, b.candidates...)
		if err != nil && !errors.Is(err, constraint.ErrConstraintExists) {
			return err
		}
	}
	return nil
}
