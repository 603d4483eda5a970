package validation_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-validation/pkg/config"
	"katydid-common-validation/pkg/validation"
	"katydid-common-validation/pkg/validation/constraint"
	"katydid-common-validation/pkg/validation/core"
	"katydid-common-validation/pkg/validation/rule"
)

type Empty struct {
	ID   uint
	Name string
}

type Member struct {
	ID     uint
	Name   string  `check:"notblank(message='name is required',msgid=1001);length(max=8)"`
	Email  *string `check:"email"`
	Age    int     `check:"range(min=0,max=150)"`
	Status string  `check:"oneof(values='active disabled')"`
	Temp   string  `gorm:"-" check:"notblank"`
}

type Tagged struct {
	ID   uint
	Code string `rules:"length(min=2)"`
}

type Mismatch struct {
	ID    uint
	Count int `check:"pattern(regexp='^\\d+$')"`
}

type Global struct {
	ID   uint
	Name string `check:"notblank"`
}

type Profile struct {
	ID       uint
	Nickname *string  `check:"length(min=2,max=8);pattern(regexp='^[a-z]+$')"`
	Website  *string  `check:"url"`
	Role     *string  `check:"oneof(values='admin user')"`
	Bio      *string  `check:"notblank"`
	Level    int8     `check:"range(min=1,max=9)"`
	Score    *float32 `check:"range(max=100)"`
}

func ptr[T any](v T) *T { return &v }

func newEngine(t *testing.T, opts ...validation.Option) *validation.Engine {
	t.Helper()
	e, err := validation.NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func TestGetValidationsForModel(t *testing.T) {
	t.Run("没有约束返回空序列", func(t *testing.T) {
		e := newEngine(t)

		defs, err := e.GetValidationsForModel(Empty{})
		require.NoError(t, err)
		assert.NotNil(t, defs)
		assert.Empty(t, defs)
	})

	t.Run("顺序与不持久化字段", func(t *testing.T) {
		e := newEngine(t)

		defs, err := e.GetValidationsForModel(&Member{})
		require.NoError(t, err)

		got := make([]string, len(defs))
		for i, d := range defs {
			got[i] = d.FieldName() + "/" + d.Kind()
		}
		assert.Equal(t, []string{"Name/notblank", "Name/length", "Email/email", "Age/range", "Status/oneof"}, got)

		assert.Equal(t, "name is required", defs[0].Message())
		assert.Equal(t, 1001, defs[0].MessageResID())
		assert.Equal(t, "", defs[1].Message())
		assert.Equal(t, 0, defs[1].MessageResID())

		assert.IsType(t, &rule.NullableEmailValidator{}, defs[2].Validator())
		assert.IsType(t, &rule.IntRangeValidator{}, defs[3].Validator())
	})

	t.Run("同一模型复用验证器实例", func(t *testing.T) {
		e := newEngine(t)

		first, err := e.GetValidationsForModel(Member{})
		require.NoError(t, err)
		second, err := e.GetValidationsForModel(reflect.TypeFor[*Member]())
		require.NoError(t, err)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Same(t, first[i].Validator(), second[i].Validator())
		}

		stats := e.Stats()
		assert.Equal(t, int64(1), stats.Builds)
		assert.Equal(t, int64(1), stats.Hits)
	})

	t.Run("类型不兼容", func(t *testing.T) {
		e := newEngine(t)

		_, err := e.GetValidationsForModel(Mismatch{})
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrUnresolvedValidator)

		var unresolved *core.UnresolvedValidatorError
		require.True(t, errors.As(err, &unresolved))
		assert.Equal(t, "pattern", unresolved.ConstraintKind)
		assert.Equal(t, "Count", unresolved.FieldName)
		assert.Equal(t, reflect.TypeFor[int](), unresolved.FieldType)

		_, err = e.Plan(Mismatch{})
		assert.Error(t, err)
		assert.Equal(t, int64(2), e.Stats().Failures, "失败不缓存，每次重新构建")
	})

	t.Run("非结构体", func(t *testing.T) {
		e := newEngine(t)
		_, err := e.GetValidationsForModel(42)
		assert.ErrorIs(t, err, core.ErrInvalidModel)
	})

	t.Run("自定义标签名", func(t *testing.T) {
		e := newEngine(t, validation.WithTagName("rules"))

		defs, err := e.GetValidationsForModel(Tagged{})
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "length", defs[0].Kind())
	})
}

func TestEngine_NullableColumns(t *testing.T) {
	e := newEngine(t)

	defs, err := e.GetValidationsForModel(Profile{})
	require.NoError(t, err)
	require.Len(t, defs, 7)

	t.Run("nil 只被 notblank 拦截", func(t *testing.T) {
		err := e.Validate(Profile{Level: 1})

		var ve *validation.ValidationError
		require.True(t, errors.As(err, &ve))
		require.Len(t, ve.Violations, 1)
		assert.Equal(t, "Bio", ve.Violations[0].Field)
		assert.Equal(t, "notblank", ve.Violations[0].Kind)
	})

	t.Run("非 nil 值正常校验", func(t *testing.T) {
		ok := Profile{Nickname: ptr("tom"), Website: ptr("https://example.com"), Role: ptr("admin"), Bio: ptr("hi"), Level: 9, Score: ptr(float32(99))}
		assert.NoError(t, e.Validate(&ok))

		bad := Profile{Nickname: ptr("Tom"), Website: ptr("nope"), Role: ptr("root"), Bio: ptr(" "), Level: 10, Score: ptr(float32(101))}
		err := e.Validate(&bad)

		var ve *validation.ValidationError
		require.True(t, errors.As(err, &ve))

		kinds := make([]string, len(ve.Violations))
		for i, v := range ve.Violations {
			kinds[i] = v.Field + "/" + v.Kind
		}
		assert.Equal(t, []string{"Nickname/pattern", "Website/url", "Role/oneof", "Bio/notblank", "Level/range", "Score/range"}, kinds)
	})
}

func TestEngine_Validate(t *testing.T) {
	valid := Member{Name: "tom", Email: ptr("tom@example.com"), Age: 20, Status: "active"}

	t.Run("通过", func(t *testing.T) {
		e := newEngine(t)
		assert.NoError(t, e.Validate(valid))
		assert.NoError(t, e.Validate(&valid))

		noEmail := valid
		noEmail.Email = nil
		assert.NoError(t, e.Validate(noEmail), "nil 值只由 notnull 拦截")
	})

	t.Run("收集所有违规", func(t *testing.T) {
		e := newEngine(t)

		bad := Member{Name: "", Email: ptr("bad"), Age: 200, Status: "active"}
		err := e.Validate(&bad)
		require.Error(t, err)
		assert.ErrorIs(t, err, validation.ErrValidationFailed)

		var ve *validation.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, reflect.TypeFor[Member](), ve.Model)

		kinds := make([]string, len(ve.Violations))
		for i, v := range ve.Violations {
			kinds[i] = v.Field + "/" + v.Kind
		}
		assert.Equal(t, []string{"Name/notblank", "Email/email", "Age/range"}, kinds)

		first, ok := ve.First()
		require.True(t, ok)
		assert.Equal(t, "name is required", first.Message)
		assert.Equal(t, 1001, first.MessageResID)
		assert.Equal(t, "name", first.Storage)
		assert.Equal(t, "Field 'Email' failed validation on constraint 'email'", ve.Violations[1].Error())
	})

	t.Run("快速失败", func(t *testing.T) {
		e := newEngine(t, validation.WithFailFast(true))

		err := e.Validate(Member{Name: "", Age: -1, Status: "active"})

		var ve *validation.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Len(t, ve.Violations, 1)
	})

	t.Run("非法模型", func(t *testing.T) {
		e := newEngine(t)
		assert.ErrorIs(t, e.Validate((*Member)(nil)), core.ErrInvalidModel)
		assert.ErrorIs(t, e.Validate("member"), core.ErrInvalidModel)
	})
}

func TestModelTypeOf(t *testing.T) {
	want := reflect.TypeFor[Member]()

	tests := []struct {
		name  string
		model any
	}{
		{"实例", Member{}},
		{"指针", &Member{}},
		{"反射类型", want},
		{"指针反射类型", reflect.TypeFor[*Member]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validation.ModelTypeOf(tt.model)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := validation.ModelTypeOf(nil)
	assert.ErrorIs(t, err, core.ErrInvalidModel)
	_, err = validation.ModelTypeOf([]Member{})
	assert.ErrorIs(t, err, core.ErrInvalidModel)
}

func TestNewEngineFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Log.File = filepath.Join(t.TempDir(), "validation.log")
	cfg.Validation.TagName = "rules"
	cfg.Validation.FailFast = true

	e, err := validation.NewEngineFromConfig(cfg)
	require.NoError(t, err)

	defs, err := e.GetValidationsForModel(Tagged{})
	require.NoError(t, err)
	require.Len(t, defs, 1)

	err = e.Validate(Tagged{Code: "x"})
	assert.ErrorIs(t, err, validation.ErrValidationFailed)

	t.Run("非法日志级别", func(t *testing.T) {
		bad := config.Default()
		bad.Log.Level = "loud"
		_, err := validation.NewEngineFromConfig(bad)
		assert.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	// 使用方先在默认目录上注册内置约束，默认引擎仍能创建
	if err := rule.RegisterBuiltins(constraint.Default()); err != nil {
		require.ErrorIs(t, err, constraint.ErrConstraintExists)
	}

	first, err := validation.Default()
	require.NoError(t, err)
	second, err := validation.Default()
	require.NoError(t, err)
	assert.Same(t, first, second)

	defs, err := validation.GetValidationsForModel(Global{})
	require.NoError(t, err)
	again, err := validation.GetValidationsForModel(&Global{})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Same(t, defs[0].Validator(), again[0].Validator())

	assert.ErrorIs(t, validation.Validate(Global{}), validation.ErrValidationFailed)
	assert.NoError(t, validation.Validate(Global{Name: "ok"}))
}
