package server

import (
	"encoding/json"

	"github.com/parse-server-go/parse-server-go/internal/parse"
)

// EnvelopeError 是 webhook 响应中的错误对象。
type EnvelopeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Envelope is the webhook response body: {"success": T} or
// {"error": {"code": .., "message": ..}}. Both are sent with HTTP 200.
type Envelope struct {
	success interface{}
	err     *EnvelopeError
}

// Success 包装成功结果；nil 会编码为 {"success":null}。
func Success(value interface{}) *Envelope {
	return &Envelope{success: value}
}

// Failure 将任意错误包装为错误信封，非 *parse.Error 归入 OtherCause。
func Failure(err error) *Envelope {
	perr := parse.AsError(err)
	if perr == nil {
		perr = parse.NewError(parse.OtherCause, "unknown error")
	}
	return &Envelope{err: &EnvelopeError{Code: perr.Code, Message: perr.Message}}
}

// IsError reports whether the envelope carries an error.
func (e *Envelope) IsError() bool { return e.err != nil }

// Err 返回错误对象，成功信封返回 nil。
func (e *Envelope) Err() *EnvelopeError { return e.err }

func (e *Envelope) MarshalJSON() ([]byte, error) {
	if e.err != nil {
		return json.Marshal(struct {
			Error *EnvelopeError `json:"error"`
		}{e.err})
	}
	return json.Marshal(struct {
		Success interface{} `json:"success"`
	}{e.success})
}
