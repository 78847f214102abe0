package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// ByteSize 表示请求体大小上限，支持 "16kb"、"1mb" 或纯字节数写法。
type ByteSize int64

var byteUnits = []struct {
	suffix string
	factor int64
}{
	{"gb", 1 << 30},
	{"mb", 1 << 20},
	{"kb", 1 << 10},
	{"b", 1},
}

// UnmarshalText 解析带单位的大小字符串，单位大小写不敏感。
func (b *ByteSize) UnmarshalText(text []byte) error {
	raw := strings.ToLower(strings.TrimSpace(string(text)))
	if raw == "" {
		*b = ByteSize(0)
		return nil
	}

	for _, unit := range byteUnits {
		if !strings.HasSuffix(raw, unit.suffix) {
			continue
		}
		number := strings.TrimSpace(strings.TrimSuffix(raw, unit.suffix))
		value, err := strconv.ParseFloat(number, 64)
		if err != nil || value < 0 {
			return fmt.Errorf("invalid byte size value: %s", raw)
		}
		*b = ByteSize(int64(value * float64(unit.factor)))
		return nil
	}

	value, err := parseInt(raw)
	if err != nil || value < 0 {
		return fmt.Errorf("invalid byte size value: %s", raw)
	}
	*b = ByteSize(value)
	return nil
}

// Int 返回 fiber BodyLimit 所需的 int 值。
func (b ByteSize) Int() int {
	return int(b)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// Config 描述 Cloud Code 服务的全部运行参数。构建完成（Finalize）后视为只读，
// 由 main 显式注入各组件，不再修改。
type Config struct {
	// ApplicationID/PrimaryKey 对应 Parse Server 的 appId 与 masterKey。
	ApplicationID string `mapstructure:"ApplicationID"`
	PrimaryKey    string `mapstructure:"PrimaryKey"`
	// WebhookKey 为空表示未配置，鉴权行为由 AuthMode 决定。
	WebhookKey string `mapstructure:"WebhookKey"`

	// ServerURL 是主 Parse Server，ServerURLs 为附加服务器；Finalize 后
	// ServerURLs 包含全部服务器且主服务器排在首位。
	ServerURL  string   `mapstructure:"ServerURL"`
	ServerURLs []string `mapstructure:"ServerURLs"`

	HostName    string   `mapstructure:"HostName"`
	Port        int      `mapstructure:"Port"`
	PublicURL   string   `mapstructure:"PublicURL"`
	TLSCertFile string   `mapstructure:"TLSCertFile"`
	TLSKeyFile  string   `mapstructure:"TLSKeyFile"`
	MaxBodySize ByteSize `mapstructure:"MaxBodySize"`

	AuthMode        AuthMode     `mapstructure:"AuthMode"`
	HealthPolicy    HealthPolicy `mapstructure:"HealthPolicy"`
	UpstreamTimeout Duration     `mapstructure:"UpstreamTimeout"`
	ShutdownGrace   Duration     `mapstructure:"ShutdownGrace"`

	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
}

// HasWebhookKey 表示是否配置了 webhook 共享密钥。
func (c *Config) HasWebhookKey() bool {
	return c.WebhookKey != ""
}

// PrimaryServerURL 返回主 Parse Server 地址；列表为空时返回空串。
func (c *Config) PrimaryServerURL() string {
	if len(c.ServerURLs) == 0 {
		return ""
	}
	return c.ServerURLs[0]
}

// TLSEnabled 表示本服务是否以 https 对外提供 webhook。
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// ListenAddr 返回 fiber 监听地址。
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.HostName, strconv.Itoa(c.Port))
}

// ServerPathname 返回 Parse Server 回调本服务时使用的基础地址（scheme://host:port）。
// 设置 PublicURL 时优先使用，便于运行在反向代理或容器网络之后。
func (c *Config) ServerPathname() string {
	if c.PublicURL != "" {
		return strings.TrimSuffix(c.PublicURL, "/")
	}
	scheme := "http"
	if c.TLSEnabled() {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(c.HostName, strconv.Itoa(c.Port))
}

// Summary 输出不含密钥的配置摘要，供启动日志使用。
func (c *Config) Summary() map[string]interface{} {
	return map[string]interface{}{
		"application_id": c.ApplicationID,
		"servers":        append([]string(nil), c.ServerURLs...),
		"server_path":    c.ServerPathname(),
		"webhook_key":    c.HasWebhookKey(),
		"auth_mode":      string(c.AuthMode),
		"health_policy":  string(c.HealthPolicy),
	}
}
