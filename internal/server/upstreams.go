package server

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/parse-server-go/parse-server-go/internal/config"
	"github.com/parse-server-go/parse-server-go/internal/hooks"
)

// UpstreamStatus 聚合某台 Parse Server 的配置与最近一次健康检查结果，
// 供 /-/servers 诊断接口与日志复用。
type UpstreamStatus struct {
	URL     string `json:"url"`
	Host    string `json:"host"`
	Primary bool   `json:"primary"`
	// Health 为最近一次 /health 返回的状态，尚未检查时为空。
	Health    string    `json:"health,omitempty"`
	Error     string    `json:"error,omitempty"`
	Version   string    `json:"version,omitempty"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
}

// Healthy reports whether the last check returned "ok".
func (s UpstreamStatus) Healthy() bool {
	return s.Health == "ok" && s.Error == ""
}

// UpstreamRegistry 保存配置中的 Parse Server 列表（主服务器在首位）及其状态。
type UpstreamRegistry struct {
	mu      sync.RWMutex
	ordered []string
	status  map[string]*UpstreamStatus
}

// NewUpstreamRegistry 根据配置构建上游列表。调用方应在启动阶段创建一次并复用。
func NewUpstreamRegistry(cfg *config.Config) (*UpstreamRegistry, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if len(cfg.ServerURLs) == 0 {
		return nil, hooks.ErrNoServers
	}

	registry := &UpstreamRegistry{
		status: make(map[string]*UpstreamStatus, len(cfg.ServerURLs)),
	}
	for i, raw := range cfg.ServerURLs {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid parse server %s: %w", raw, err)
		}
		if _, exists := registry.status[raw]; exists {
			return nil, fmt.Errorf("duplicate parse server %s", raw)
		}
		registry.ordered = append(registry.ordered, raw)
		registry.status[raw] = &UpstreamStatus{URL: raw, Host: parsed.Host, Primary: i == 0}
	}
	return registry, nil
}

// URLs 返回按配置顺序排列的服务器地址。
func (r *UpstreamRegistry) URLs() []string {
	return append([]string(nil), r.ordered...)
}

// Resolve 返回发起请求的上游，规则见 hooks.ResolveServerURL。
func (r *UpstreamRegistry) Resolve(requestURI string) (string, error) {
	return hooks.ResolveServerURL(requestURI, r.ordered)
}

// RecordHealth 记录一次健康检查结果，未知服务器忽略。
func (r *UpstreamRegistry) RecordHealth(server, health, version string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.status[server]
	if !ok {
		return
	}
	status.Health = health
	status.Version = version
	status.CheckedAt = time.Now()
	status.Error = ""
	if err != nil {
		status.Error = err.Error()
	}
}

// List 返回状态快照（按配置顺序）。
func (r *UpstreamRegistry) List() []UpstreamStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]UpstreamStatus, 0, len(r.ordered))
	for _, server := range r.ordered {
		result = append(result, *r.status[server])
	}
	return result
}
