package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix 是所有环境变量的统一前缀。
const EnvPrefix = "PARSE_SERVER_GO"

// envBindings 将配置键映射到环境变量名（不含前缀）。
var envBindings = map[string]string{
	"ApplicationID":   "APPLICATION_ID",
	"PrimaryKey":      "PRIMARY_KEY",
	"WebhookKey":      "WEBHOOK_KEY",
	"ServerURL":       "URL",
	"ServerURLs":      "URLS",
	"HostName":        "HOST_NAME",
	"Port":            "PORT",
	"PublicURL":       "PUBLIC_URL",
	"TLSCertFile":     "TLS_CERT_FILE",
	"TLSKeyFile":      "TLS_KEY_FILE",
	"MaxBodySize":     "DEFAULT_MAX_BODY_SIZE",
	"AuthMode":        "AUTH_MODE",
	"HealthPolicy":    "HEALTH_POLICY",
	"UpstreamTimeout": "UPSTREAM_TIMEOUT",
	"ShutdownGrace":   "SHUTDOWN_GRACE",
	"LogLevel":        "LOG_LEVEL",
	"LogFilePath":     "LOG_FILE_PATH",
	"LogMaxSize":      "LOG_MAX_SIZE",
	"LogMaxBackups":   "LOG_MAX_BACKUPS",
	"LogCompress":     "LOG_COMPRESS",
}

// EnvName 返回配置键对应的完整环境变量名，例如 PARSE_SERVER_GO_PRIMARY_KEY。
func EnvName(key string) string {
	return EnvPrefix + "_" + envBindings[key]
}

// Load 读取 TOML 配置文件（可选）与 PARSE_SERVER_GO_* 环境变量，环境变量优先；
// path 为空时只使用环境变量。返回的配置已注入默认值并通过校验。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, EnvPrefix+"_"+env); err != nil {
			return nil, fmt.Errorf("绑定环境变量失败: %w", err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		sizeDecodeHook(),
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finalize 为程序化构建的配置注入默认值、合并服务器列表并执行校验。
// Load 内部同样调用它，因此两条配置路径得到的结果一致。
func (c *Config) Finalize() error {
	applyDefaults(c)
	c.ServerURLs = mergeServerURLs(c.ServerURL, c.ServerURLs)
	c.ServerURL = c.PrimaryServerURL()

	mode, err := parseAuthMode(string(c.AuthMode))
	if err != nil {
		return newFieldError("AuthMode", err.Error())
	}
	c.AuthMode = mode

	policy, err := parseHealthPolicy(string(c.HealthPolicy))
	if err != nil {
		return newFieldError("HealthPolicy", err.Error())
	}
	c.HealthPolicy = policy

	return c.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HostName", "localhost")
	v.SetDefault("Port", 8081)
	v.SetDefault("MaxBodySize", "16kb")
	v.SetDefault("AuthMode", string(AuthModeLenient))
	v.SetDefault("HealthPolicy", string(HealthFailFast))
	v.SetDefault("UpstreamTimeout", "30s")
	v.SetDefault("ShutdownGrace", "10s")
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
}

func applyDefaults(c *Config) {
	if strings.TrimSpace(c.HostName) == "" {
		c.HostName = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8081
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = ByteSize(16 << 10)
	}
	if c.UpstreamTimeout.DurationValue() == 0 {
		c.UpstreamTimeout = Duration(30 * time.Second)
	}
	if c.ShutdownGrace.DurationValue() == 0 {
		c.ShutdownGrace = Duration(10 * time.Second)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// mergeServerURLs 将主服务器放在首位，去掉空白与重复项并保持原有顺序。
func mergeServerURLs(primary string, others []string) []string {
	seen := make(map[string]struct{}, len(others)+1)
	result := make([]string, 0, len(others)+1)
	add := func(raw string) {
		trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "/")
		if trimmed == "" {
			return
		}
		if _, ok := seen[trimmed]; ok {
			return
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	add(primary)
	for _, raw := range others {
		add(raw)
	}
	return result
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

func sizeDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(ByteSize(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			var size ByteSize
			if err := size.UnmarshalText([]byte(v)); err != nil {
				return nil, fmt.Errorf("无法解析 MaxBodySize 字段: %w", err)
			}
			return size, nil
		case int:
			return ByteSize(v), nil
		case int64:
			return ByteSize(v), nil
		case float64:
			return ByteSize(int64(v)), nil
		case ByteSize:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 MaxBodySize 类型: %T", v)
		}
	}
}
