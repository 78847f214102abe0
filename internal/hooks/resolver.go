package hooks

import (
	"errors"
	"strings"
)

// ErrNoServers 表示没有配置任何 Parse Server，属于配置错误。
var ErrNoServers = errors.New("hooks: no parse servers configured")

// ResolveServerURL 返回发起本次 webhook 调用的上游：known 中第一个作为子串出现在
// requestURI 里的地址；都不匹配时回退到 known[0]（主服务器）。
func ResolveServerURL(requestURI string, known []string) (string, error) {
	if len(known) == 0 {
		return "", ErrNoServers
	}
	for _, server := range known {
		if server != "" && strings.Contains(requestURI, server) {
			return server, nil
		}
	}
	return known[0], nil
}
