package metadata

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTagName 默认的约束标签名
//
// 语法：多个约束以分号分隔，参数写在括号内，值可以用单引号包裹以包含 , ; ( )
//
//	Name string `check:"notnull(message='name is required',msgid=1001);length(min=3,max=20)"`
const DefaultTagName = "check"

var errTagSyntax = errors.New("constraint tag syntax error")

// tagMarker 从标签解析出的一个约束声明
type tagMarker struct {
	kind   string
	params map[string]string
}

// parseTag 解析约束标签，保留声明顺序
func parseTag(tag string) ([]tagMarker, error) {
	segments, err := splitTopLevel(tag, ';')
	if err != nil {
		return nil, err
	}

	markers := make([]tagMarker, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		marker, err := parseSegment(segment)
		if err != nil {
			return nil, err
		}
		markers = append(markers, marker)
	}
	return markers, nil
}

// parseSegment 解析 kind 或 kind(k=v,...)
func parseSegment(segment string) (tagMarker, error) {
	open := strings.IndexByte(segment, '(')
	if open < 0 {
		if strings.ContainsAny(segment, ")='") {
			return tagMarker{}, fmt.Errorf("%w: unexpected token in %q", errTagSyntax, segment)
		}
		return tagMarker{kind: segment}, nil
	}

	if !strings.HasSuffix(segment, ")") {
		return tagMarker{}, fmt.Errorf("%w: missing ')' in %q", errTagSyntax, segment)
	}

	kind := strings.TrimSpace(segment[:open])
	if kind == "" {
		return tagMarker{}, fmt.Errorf("%w: missing constraint kind in %q", errTagSyntax, segment)
	}

	pairs, err := splitTopLevel(segment[open+1:len(segment)-1], ',')
	if err != nil {
		return tagMarker{}, err
	}

	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		eq := strings.IndexByte(pair, '=')
		if eq <= 0 {
			return tagMarker{}, fmt.Errorf("%w: expected key=value, got %q", errTagSyntax, pair)
		}

		key := strings.TrimSpace(pair[:eq])
		if _, dup := params[key]; dup {
			return tagMarker{}, fmt.Errorf("%w: duplicate param %q in %q", errTagSyntax, key, segment)
		}
		params[key] = unquote(strings.TrimSpace(pair[eq+1:]))
	}

	return tagMarker{kind: kind, params: params}, nil
}

// splitTopLevel 按分隔符切分，忽略引号和括号内的分隔符
func splitTopLevel(s string, sep rune) ([]string, error) {
	var (
		parts   []string
		depth   int
		inQuote bool
		start   int
	)

	for i, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced ')' in %q", errTagSyntax, s)
			}
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}

	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quote in %q", errTagSyntax, s)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced '(' in %q", errTagSyntax, s)
	}

	return append(parts, s[start:]), nil
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v[1 : len(v)-1]
	}
	return v
}
