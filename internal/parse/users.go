package parse

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// User 是 _User 记录中本服务会读取的字段。
type User struct {
	ObjectID      string                 `json:"objectId,omitempty"`
	Username      string                 `json:"username,omitempty"`
	Email         string                 `json:"email,omitempty"`
	EmailVerified bool                   `json:"emailVerified,omitempty"`
	SessionToken  string                 `json:"sessionToken,omitempty"`
	CreatedAt     string                 `json:"createdAt,omitempty"`
	UpdatedAt     string                 `json:"updatedAt,omitempty"`
	ACL           map[string]interface{} `json:"ACL,omitempty"`
	AuthData      map[string]interface{} `json:"authData,omitempty"`
}

// ErrSessionTokenRequired 表示调用方没有可用的 session token。
var ErrSessionTokenRequired = errors.New("parse: session token required")

// Me 使用 opts.SessionToken 读取当前用户的完整记录并解码到 out。
func (c *Client) Me(ctx context.Context, opts Options, out interface{}) error {
	if opts.SessionToken == "" {
		return ErrSessionTokenRequired
	}
	opts.UsePrimaryKey = false
	return c.Do(ctx, http.MethodGet, "users/me", opts, nil, out)
}

// MeRaw 与 Me 相同，但保留原始 JSON，便于与请求中的部分字段合并。
func (c *Client) MeRaw(ctx context.Context, opts Options) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Me(ctx, opts, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
