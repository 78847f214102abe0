package server

import (
	"encoding/json"
	"errors"

	"github.com/parse-server-go/parse-server-go/internal/parse"
)

// RequestBase 是函数与触发器请求共有的字段。
type RequestBase struct {
	// Primary 表示调用方使用了主密钥。
	Primary        bool              `json:"master,omitempty"`
	User           *parse.User       `json:"user,omitempty"`
	InstallationID string            `json:"installationId,omitempty"`
	IP             string            `json:"ip,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	Context        json.RawMessage   `json:"context,omitempty"`
}

// ErrNoUser 表示请求中没有调用用户。
var ErrNoUser = errors.New("request has no user")

// Options 返回以调用者身份访问发起本次调用的 Parse Server 的选项：
// 服务器由请求地址解析，session token 与 installationId 来自请求体。
func (r *RequestBase) Options(c *Context) parse.Options {
	opts := parse.Options{ServerURL: c.ServerURL(), InstallationID: r.InstallationID}
	if r.User != nil {
		opts.SessionToken = r.User.SessionToken
	}
	return opts
}

// HydrateUser 用 /users/me 返回的完整记录替换请求中的 User，保留 session token。
func (r *RequestBase) HydrateUser(c *Context) error {
	if r.User == nil {
		return ErrNoUser
	}
	var full parse.User
	if err := c.Parse().Me(c.Context(), r.Options(c), &full); err != nil {
		return err
	}
	if full.SessionToken == "" {
		full.SessionToken = r.User.SessionToken
	}
	r.User = &full
	return nil
}

// FunctionRequest 是云函数 webhook 的请求体，P 为 params 的类型。
type FunctionRequest[P any] struct {
	RequestBase
	FunctionName string `json:"functionName,omitempty"`
	Params       P      `json:"params"`
}

// TriggerRequest 是触发器 webhook 的请求体，O 为对象类型。
// 不同 triggerName 只会填充其中一部分字段。
type TriggerRequest[O any] struct {
	RequestBase
	TriggerName string `json:"triggerName,omitempty"`
	Object      *O     `json:"object,omitempty"`
	Original    *O     `json:"original,omitempty"`

	// beforeFind / afterFind
	Query   json.RawMessage `json:"query,omitempty"`
	Count   bool            `json:"count,omitempty"`
	IsGet   bool            `json:"isGet,omitempty"`
	Objects []O             `json:"objects,omitempty"`

	// 文件触发器
	File     json.RawMessage `json:"file,omitempty"`
	FileSize int64           `json:"fileSize,omitempty"`

	// LiveQuery
	Event         string `json:"event,omitempty"`
	Clients       int    `json:"clients,omitempty"`
	Subscriptions int    `json:"subscriptions,omitempty"`
	SessionToken  string `json:"sessionToken,omitempty"`
}
