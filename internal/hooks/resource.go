package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/parse-server-go/parse-server-go/internal/logging"
	"github.com/parse-server-go/parse-server-go/internal/metrics"
	"github.com/parse-server-go/parse-server-go/internal/parse"
)

const defaultConcurrency = 8

// deleteOp 是 Parse Server 删除 hook 的请求体。
var deleteOp = map[string]string{"__op": "Delete"}

// ResourceClient 在一组 Parse Server 上执行 hook 的增删改查。
// 每台服务器独立调用：失败只记录日志，结果中不包含该服务器。
type ResourceClient struct {
	client      *parse.Client
	logger      *logrus.Logger
	concurrency int
}

// NewResourceClient 创建 ResourceClient，client 不能为空。
func NewResourceClient(client *parse.Client, logger *logrus.Logger) (*ResourceClient, error) {
	if client == nil {
		return nil, errors.New("hooks: parse client is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &ResourceClient{client: client, logger: logger, concurrency: defaultConcurrency}, nil
}

// Servers 返回默认操作的服务器列表。
func (rc *ResourceClient) Servers() []string {
	return rc.client.Servers()
}

// Create 在每台服务器上创建 hook。遇到 WebhookError（hook 已存在）时先在该服务器
// 删除同一 hook 再重试一次，第二次仍冲突则记录错误。
func (rc *ResourceClient) Create(ctx context.Context, hook Hook, servers ...string) map[string]Hook {
	return rc.each(ctx, "create", hook, servers, func(ctx context.Context, server string) (Hook, error) {
		created, err := rc.create(ctx, hook, server)
		if err == nil || !parse.IsCode(err, parse.WebhookError) {
			return created, err
		}

		metrics.ObserveConflict()
		rc.logger.WithFields(logging.HookFields("hook_conflict", string(hook.Category()), hook.ID(), server)).
			Warn("hook already exists, replacing")

		if err := rc.delete(ctx, hook, server); err != nil {
			return nil, fmt.Errorf("delete stale hook: %w", err)
		}
		return rc.create(ctx, hook, server)
	})
}

// Update 修改每台服务器上 hook 的 webhook 地址。
func (rc *ResourceClient) Update(ctx context.Context, hook Hook, servers ...string) map[string]Hook {
	return rc.each(ctx, "update", hook, servers, func(ctx context.Context, server string) (Hook, error) {
		out := hook.decoded()
		body := map[string]string{"url": hook.Endpoint()}
		if err := rc.client.Do(ctx, http.MethodPut, hook.resourcePath(), parse.Primary(server), body, out); err != nil {
			return nil, err
		}
		return normalize(out, hook), nil
	})
}

// Fetch 读取每台服务器上的 hook。
func (rc *ResourceClient) Fetch(ctx context.Context, hook Hook, servers ...string) map[string]Hook {
	return rc.each(ctx, "fetch", hook, servers, func(ctx context.Context, server string) (Hook, error) {
		out := hook.decoded()
		if err := rc.client.Do(ctx, http.MethodGet, hook.resourcePath(), parse.Primary(server), nil, out); err != nil {
			return nil, err
		}
		return normalize(out, hook), nil
	})
}

// FetchAll 读取每台服务器上某一类的全部 hook。
func (rc *ResourceClient) FetchAll(ctx context.Context, category Category, servers ...string) map[string][]Hook {
	targets := rc.targets(servers)
	results := make(map[string][]Hook, len(targets))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(rc.concurrency)
	for _, server := range targets {
		g.Go(func() error {
			hooks, err := rc.fetchAll(ctx, category, server)
			metrics.ObserveHookCall("fetch_all", err)
			if err != nil {
				rc.logger.WithFields(logging.HookFields("hook_fetch_all", string(category), "*", server)).
					WithError(err).Error("fetch hooks failed")
				return nil
			}
			mu.Lock()
			results[server] = hooks
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Delete 删除每台服务器上的 hook，返回删除成功的服务器（已排序）。
func (rc *ResourceClient) Delete(ctx context.Context, hook Hook, servers ...string) []string {
	done := rc.each(ctx, "delete", hook, servers, func(ctx context.Context, server string) (Hook, error) {
		if err := rc.delete(ctx, hook, server); err != nil {
			return nil, err
		}
		return hook, nil
	})
	result := make([]string, 0, len(done))
	for server := range done {
		result = append(result, server)
	}
	sort.Strings(result)
	return result
}

// DeleteOn 删除单台服务器上的 hook 并返回错误，供 Drain 逐条记录结果。
func (rc *ResourceClient) DeleteOn(ctx context.Context, hook Hook, server string) error {
	err := rc.delete(ctx, hook, server)
	metrics.ObserveHookCall("delete", err)
	return err
}

func (rc *ResourceClient) each(ctx context.Context, op string, hook Hook, servers []string, call func(context.Context, string) (Hook, error)) map[string]Hook {
	targets := rc.targets(servers)
	results := make(map[string]Hook, len(targets))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(rc.concurrency)
	for _, server := range targets {
		g.Go(func() error {
			out, err := call(ctx, server)
			metrics.ObserveHookCall(op, err)
			fields := logging.HookFields("hook_"+op, string(hook.Category()), hook.ID(), server)
			if err != nil {
				rc.logger.WithFields(fields).WithError(err).Error("hook " + op + " failed")
				return nil
			}
			rc.logger.WithFields(fields).Info("hook " + op + " succeeded")
			mu.Lock()
			results[server] = out
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (rc *ResourceClient) targets(servers []string) []string {
	if len(servers) > 0 {
		return servers
	}
	return rc.client.Servers()
}

func (rc *ResourceClient) create(ctx context.Context, hook Hook, server string) (Hook, error) {
	out := hook.decoded()
	if err := rc.client.Do(ctx, http.MethodPost, hook.collectionPath(), parse.Primary(server), hook, out); err != nil {
		return nil, err
	}
	return normalize(out, hook), nil
}

func (rc *ResourceClient) delete(ctx context.Context, hook Hook, server string) error {
	return rc.client.Do(ctx, http.MethodPut, hook.resourcePath(), parse.Primary(server), deleteOp, nil)
}

func (rc *ResourceClient) fetchAll(ctx context.Context, category Category, server string) ([]Hook, error) {
	var raw []json.RawMessage
	var proto Hook = &FunctionHook{}
	if category == CategoryTrigger {
		proto = &TriggerHook{}
	}
	if err := rc.client.Do(ctx, http.MethodGet, proto.collectionPath(), parse.Primary(server), nil, &raw); err != nil {
		return nil, err
	}
	result := make([]Hook, 0, len(raw))
	for _, item := range raw {
		hook := proto.decoded()
		if err := json.Unmarshal(item, hook); err != nil {
			return nil, fmt.Errorf("decode %s hook: %w", category, err)
		}
		result = append(result, hook)
	}
	return result, nil
}

// normalize 在上游响应缺少标识字段时回退到请求的 hook，保证登记键稳定。
func normalize(out, requested Hook) Hook {
	if out == nil || out.ID() == "" || out.ID() == "/" {
		return requested
	}
	return out
}
