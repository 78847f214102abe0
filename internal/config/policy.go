package config

import (
	"fmt"
	"strings"
)

// AuthMode 决定未配置 WebhookKey 时如何处理入站请求：
// - lenient：未配置密钥即视为关闭鉴权，任何（或缺失的）X-Parse-Webhook-Key 都放行；
// - strict：未配置密钥时请求也不得携带该头，携带任何值都会被拒绝。
// 配置了密钥时两种模式都要求请求头与密钥完全相等。
type AuthMode string

const (
	AuthModeLenient AuthMode = "lenient"
	AuthModeStrict  AuthMode = "strict"
)

// HealthPolicy 决定启动时 Parse Server 健康检查失败后的行为：
// - fail-fast：清理已注册的 hook 后停止服务；
// - best-effort：记录错误并继续提供服务。
type HealthPolicy string

const (
	HealthFailFast   HealthPolicy = "fail-fast"
	HealthBestEffort HealthPolicy = "best-effort"
)

// parseAuthMode 将配置中的 AuthMode 标准化，空值回退到 lenient。
func parseAuthMode(raw string) (AuthMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "":
		return AuthModeLenient, nil
	case string(AuthModeLenient):
		return AuthModeLenient, nil
	case string(AuthModeStrict):
		return AuthModeStrict, nil
	default:
		return "", fmt.Errorf("不支持的 AuthMode: %s", raw)
	}
}

// parseHealthPolicy 将配置中的 HealthPolicy 标准化，空值回退到 fail-fast。
func parseHealthPolicy(raw string) (HealthPolicy, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "":
		return HealthFailFast, nil
	case string(HealthFailFast), "failfast":
		return HealthFailFast, nil
	case string(HealthBestEffort), "besteffort":
		return HealthBestEffort, nil
	default:
		return "", fmt.Errorf("不支持的 HealthPolicy: %s", raw)
	}
}

// FailFast 表示健康检查失败后是否应停止服务。
func (p HealthPolicy) FailFast() bool {
	return p != HealthBestEffort
}
