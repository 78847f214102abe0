package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// HookFields 描述一次针对某台 Parse Server 的 hook 操作。
func HookFields(action, kind, hookID, server string) logrus.Fields {
	return logrus.Fields{
		"action":    action,
		"hook_kind": kind,
		"hook_id":   hookID,
		"server":    server,
	}
}

// RequestFields 提供入站 webhook 请求的公共字段。
func RequestFields(route, requestID, server string) logrus.Fields {
	return logrus.Fields{
		"route":      route,
		"request_id": requestID,
		"server":     server,
	}
}
