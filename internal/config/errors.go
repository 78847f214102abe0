package config

import (
	"errors"
	"fmt"
)

// ErrAlreadyConfigured 表示进程内重复初始化配置。
var ErrAlreadyConfigured = errors.New("configuration already initialized")

// FieldError 提供字段路径与错误原因，便于 CLI 向用户反馈。
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// newFieldError 创建包含字段路径与原因的 error，便于 CLI 定位。
func newFieldError(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

// serverField 用于拼接服务器级字段路径，方便输出 ServerURLs[0] 形式。
func serverField(index int) string {
	return fmt.Sprintf("ServerURLs[%d]", index)
}
