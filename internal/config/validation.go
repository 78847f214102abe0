package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	if strings.TrimSpace(c.ApplicationID) == "" {
		return newFieldError("ApplicationID", "不能为空")
	}
	if strings.TrimSpace(c.PrimaryKey) == "" {
		return newFieldError("PrimaryKey", "不能为空")
	}

	if len(c.ServerURLs) == 0 {
		return newFieldError("ServerURLs", "至少需要配置一个 Parse Server")
	}
	for i, raw := range c.ServerURLs {
		if err := validateServerURL(raw); err != nil {
			return fmt.Errorf("%s: %w", serverField(i), err)
		}
	}

	if strings.TrimSpace(c.HostName) == "" {
		return newFieldError("HostName", "不能为空")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return newFieldError("Port", "必须在 1-65535")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return newFieldError("TLSCertFile/TLSKeyFile", "必须同时提供或同时留空")
	}
	if c.PublicURL != "" {
		if err := validateServerURL(c.PublicURL); err != nil {
			return fmt.Errorf("PublicURL: %w", err)
		}
	}
	if c.MaxBodySize <= 0 {
		return newFieldError("MaxBodySize", "必须大于 0")
	}

	if _, err := parseAuthMode(string(c.AuthMode)); err != nil {
		return newFieldError("AuthMode", "仅支持 lenient/strict")
	}
	if _, err := parseHealthPolicy(string(c.HealthPolicy)); err != nil {
		return newFieldError("HealthPolicy", "仅支持 fail-fast/best-effort")
	}
	if c.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("UpstreamTimeout", "必须大于 0")
	}
	if c.ShutdownGrace.DurationValue() <= 0 {
		return newFieldError("ShutdownGrace", "必须大于 0")
	}
	return nil
}

func validateServerURL(raw string) error {
	if raw == "" {
		return errors.New("缺少服务器地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("缺少 Host: %s", raw)
	}
	return nil
}
