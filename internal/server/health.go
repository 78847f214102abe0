package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/parse-server-go/parse-server-go/internal/parse"
)

// CheckUpstreams 并发检查全部 Parse Server 的 /health，并记录到 upstreams。
// 任意一台不健康时返回汇总错误；健康的服务器同时读取 /serverInfo 版本（失败忽略）。
func CheckUpstreams(ctx context.Context, client *parse.Client, upstreams *UpstreamRegistry, logger *logrus.Logger) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, server := range upstreams.URLs() {
		g.Go(func() error {
			fields := logrus.Fields{"action": "health_check", "server": server}
			status, err := client.Health(ctx, parse.Options{ServerURL: server})
			if err != nil {
				upstreams.RecordHealth(server, status, "", err)
				logger.WithFields(fields).WithError(err).Error("health_check_failed")
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", server, err))
				mu.Unlock()
				return nil
			}

			version := ""
			if info, infoErr := client.ServerInfo(ctx, server); infoErr == nil {
				version = info.ParseServerVersion
			}
			upstreams.RecordHealth(server, status, version, nil)
			fields["health"] = status
			fields["version"] = version
			logger.WithFields(fields).Info("parse server healthy")
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
