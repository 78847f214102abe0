package config

import (
	"os"
	"path/filepath"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// clearEnv 清空所有 PARSE_SERVER_GO_* 变量，避免宿主环境干扰测试。
func clearEnv(t *testing.T) {
	t.Helper()
	for key := range envBindings {
		t.Setenv(EnvName(key), "")
		os.Unsetenv(EnvName(key))
	}
}
