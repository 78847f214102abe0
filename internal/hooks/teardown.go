package hooks

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/parse-server-go/parse-server-go/internal/logging"
)

// DrainReport 汇总一次清理的结果。
type DrainReport struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Total 返回处理过的记录数。
func (r DrainReport) Total() int { return r.Deleted + r.Failed }

// Drain 删除 registry 中登记的全部 hook：每条记录只在自己的服务器上删除，
// 无论远端是否成功都会从 registry 移除。ctx 结束后剩余记录不再请求上游，
// 但同样被移除。
func Drain(ctx context.Context, client *ResourceClient, registry *Registry, logger *logrus.Logger) DrainReport {
	if logger == nil {
		logger = logging.Discard()
	}
	var report DrainReport
	if registry == nil {
		return report
	}

	entries := append(registry.Functions(), registry.Triggers()...)
	for _, entry := range entries {
		fields := logging.HookFields("hook_teardown", string(entry.Hook.Category()), entry.Hook.ID(), entry.Server)

		var err error
		switch {
		case client == nil:
			err = errNoClient
		case ctx.Err() != nil:
			err = ctx.Err()
		default:
			err = client.DeleteOn(ctx, entry.Hook, entry.Server)
		}

		if err != nil {
			report.Failed++
			logger.WithFields(fields).WithError(err).Warn("hook delete failed during teardown")
		} else {
			report.Deleted++
			logger.WithFields(fields).Info("hook deleted")
		}
		registry.Remove(map[string]Hook{entry.Server: entry.Hook})
	}

	logger.WithFields(logrus.Fields{
		"action":  "teardown_complete",
		"deleted": report.Deleted,
		"failed":  report.Failed,
	}).Info("hook teardown finished")
	return report
}
