package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want []tagMarker
	}{
		{
			name: "单个无参约束",
			tag:  "notnull",
			want: []tagMarker{{kind: "notnull"}},
		},
		{
			name: "多个约束保持顺序",
			tag:  "notblank; length(min=3,max=20) ;email",
			want: []tagMarker{
				{kind: "notblank"},
				{kind: "length", params: map[string]string{"min": "3", "max": "20"}},
				{kind: "email"},
			},
		},
		{
			name: "引号内的分隔符",
			tag:  "notblank(message='name, please; now',msgid=1001)",
			want: []tagMarker{
				{kind: "notblank", params: map[string]string{"message": "name, please; now", "msgid": "1001"}},
			},
		},
		{
			name: "引号内的括号",
			tag:  "pattern(regexp='^(a|b)+$')",
			want: []tagMarker{
				{kind: "pattern", params: map[string]string{"regexp": "^(a|b)+$"}},
			},
		},
		{
			name: "空括号与空段",
			tag:  "notnull();;",
			want: []tagMarker{{kind: "notnull", params: map[string]string{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTag(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTag_Errors(t *testing.T) {
	tests := []struct {
		name string
		tag  string
	}{
		{"未闭合引号", "notblank(message='oops)"},
		{"缺少右括号", "length(min=3"},
		{"多余右括号", "length)"},
		{"缺少种类", "(min=3)"},
		{"缺少等号", "length(min)"},
		{"重复参数", "length(min=1,min=2)"},
		{"括号后有多余内容", "length(min=1)x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTag(tt.tag)
			assert.ErrorIs(t, err, errTagSyntax)
		})
	}
}
