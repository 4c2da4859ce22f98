package ident

import (
	"regexp"
	"strings"
)

// Sanitizer 校验并规范化文档标识符，路由层据此决定 404 或重定向。
type Sanitizer interface {
	IsValid(id string) bool
	Sanitize(id string) string
}

// 合法标识符：1-50 位的字母、数字、下划线或连字符。
var (
	validID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Default 返回内置的标识符规则实现。
func Default() Sanitizer {
	return defaultSanitizer{}
}

type defaultSanitizer struct{}

func (defaultSanitizer) IsValid(id string) bool {
	return validID.MatchString(id)
}

// Sanitize 把空白折叠为连字符并丢弃其余非法字符；结果可能为空，
// 表示无法给出规范形式。
func (defaultSanitizer) Sanitize(id string) string {
	collapsed := whitespace.ReplaceAllString(strings.TrimSpace(id), "-")

	var b strings.Builder
	for _, r := range collapsed {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	out := b.String()
	if len(out) > 50 {
		out = out[:50]
	}
	return out
}
