package config

import "fmt"

// FieldError 把校验失败定位到具体配置项，CLI 直接展示 Field 与 Reason。
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func newFieldError(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

// skipField 生成 Global.MinifySkip[i] 形式的字段路径。
func skipField(index int) string {
	return fmt.Sprintf("Global.MinifySkip[%d]", index)
}
