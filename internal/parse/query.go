package parse

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

// Query 描述一次类查询，字段与 Parse REST 查询参数一致。
type Query struct {
	Where   map[string]interface{} `json:"where,omitempty"`
	Order   string                 `json:"order,omitempty"`
	Keys    string                 `json:"keys,omitempty"`
	Include string                 `json:"include,omitempty"`
	Limit   int                    `json:"limit,omitempty"`
	Skip    int                    `json:"skip,omitempty"`
}

type queryBody struct {
	Method string `json:"_method"`
	Query
}

// Find 通过 POST /classes/{className} + _method=GET 执行查询，结果解码到 out（通常为切片指针）。
// 使用 POST 避免 where 条件过长时超出 URL 限制。
func (c *Client) Find(ctx context.Context, className string, q Query, opts Options, out interface{}) error {
	if className == "" {
		return errors.New("parse: class name required")
	}
	var payload struct {
		Results json.RawMessage `json:"results"`
	}
	path := "classes/" + url.PathEscape(className)
	if err := c.Do(ctx, http.MethodPost, path, opts, queryBody{Method: http.MethodGet, Query: q}, &payload); err != nil {
		return err
	}
	if out == nil || len(payload.Results) == 0 {
		return nil
	}
	return json.Unmarshal(payload.Results, out)
}
