package parse

import (
	"errors"
	"fmt"
)

// Parse Server 错误码，仅列出本服务会判断或返回的部分。
const (
	OtherCause        = -1
	InternalServer    = 1
	ConnectionFailed  = 100
	ObjectNotFound    = 101
	InvalidJSON       = 107
	ScriptFailed      = 141
	ValidationError   = 142
	WebhookError      = 143
	InvalidSessionTok = 209
)

// Error mirrors the Parse error body {"code":143,"error":"..."}.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	// Status 为上游返回的 HTTP 状态码，本地构造的错误为 0。
	Status int `json:"-"`
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("parse error %d (http %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("parse error %d: %s", e.Code, e.Message)
}

// NewError 创建本地错误，常用于 webhook 处理函数返回业务失败。
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// IsCode 判断 err 链上是否存在指定错误码的 *Error。
func IsCode(err error, code int) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}

// AsError 将任意错误转换为 *Error；非 Parse 错误归入 OtherCause。
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return &Error{Code: OtherCause, Message: err.Error()}
}
