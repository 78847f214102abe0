package parse

import (
	"context"
	"fmt"
	"net/http"
)

// HealthOK 是 Parse Server 就绪时 /health 返回的状态。
const HealthOK = "ok"

// Health 查询单台服务器的 /health，返回上游报告的状态字符串。
// 状态不是 "ok" 时同时返回错误。
func (c *Client) Health(ctx context.Context, opts Options) (string, error) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.Do(ctx, http.MethodGet, "health", opts, nil, &payload); err != nil {
		return "", err
	}
	if payload.Status != HealthOK {
		return payload.Status, fmt.Errorf("parse server is %q", payload.Status)
	}
	return payload.Status, nil
}

// ServerInfo 是 /serverInfo 返回内容中本服务关心的部分。
type ServerInfo struct {
	ParseServerVersion string                 `json:"parseServerVersion"`
	Features           map[string]interface{} `json:"features,omitempty"`
}

// ServerInfo 需要主密钥。
func (c *Client) ServerInfo(ctx context.Context, server string) (ServerInfo, error) {
	var info ServerInfo
	err := c.Do(ctx, http.MethodGet, "serverInfo", Primary(server), nil, &info)
	return info, err
}
