package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/parse-server-go/parse-server-go/internal/config"
	"github.com/parse-server-go/parse-server-go/internal/hooks"
	"github.com/parse-server-go/parse-server-go/internal/logging"
	"github.com/parse-server-go/parse-server-go/internal/parse"
)

// ErrNotRegistered 表示没有任何 Parse Server 接受该 hook。
var ErrNotRegistered = errors.New("hook was not registered on any parse server")

// HooksOptions 汇总 Hooks 的依赖。
type HooksOptions struct {
	App       *fiber.App
	Config    *config.Config
	Logger    *logrus.Logger
	Parse     *parse.Client
	Resources *hooks.ResourceClient
	Registry  *hooks.Registry
	Upstreams *UpstreamRegistry
}

// Hooks attaches webhook routes and registers the matching hooks on every
// upstream in the background. Attach never blocks on the network.
type Hooks struct {
	app       *fiber.App
	cfg       *config.Config
	logger    *logrus.Logger
	parse     *parse.Client
	resources *hooks.ResourceClient
	registry  *hooks.Registry
	upstreams *UpstreamRegistry

	// base 在关闭时取消，终止仍在进行的注册。
	base   context.Context
	cancel context.CancelFunc

	pending sync.WaitGroup
	mu      sync.Mutex
	regs    []*Registration
}

// NewHooks 校验依赖并创建 Hooks。
func NewHooks(opts HooksOptions) (*Hooks, error) {
	switch {
	case opts.App == nil:
		return nil, errors.New("fiber app is required")
	case opts.Config == nil:
		return nil, errors.New("config is required")
	case opts.Parse == nil:
		return nil, errors.New("parse client is required")
	case opts.Resources == nil:
		return nil, errors.New("hook resource client is required")
	case opts.Registry == nil:
		return nil, errors.New("hook registry is required")
	case opts.Upstreams == nil:
		return nil, errors.New("upstream registry is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Hooks{
		app:       opts.App,
		cfg:       opts.Config,
		logger:    logger,
		parse:     opts.Parse,
		resources: opts.Resources,
		registry:  opts.Registry,
		upstreams: opts.Upstreams,
		base:      base,
		cancel:    cancel,
	}, nil
}

// Registration 表示一次后台注册，Done 关闭后 Err/Servers 才有意义。
type Registration struct {
	Path string
	Kind hooks.Kind

	done    chan struct{}
	hook    hooks.Hook
	err     error
	servers []string
}

// Done 在注册结束（成功或失败）后关闭。
func (r *Registration) Done() <-chan struct{} { return r.done }

// Err 返回描述构造失败或 ErrNotRegistered；部分服务器成功时为 nil。
func (r *Registration) Err() error {
	<-r.done
	return r.err
}

// Servers 返回注册成功的服务器（已排序）。
func (r *Registration) Servers() []string {
	<-r.done
	return append([]string(nil), r.servers...)
}

// Hook 返回构造出的 hook 描述，构造失败时为 nil。
func (r *Registration) Hook() hooks.Hook {
	<-r.done
	return r.hook
}

// Attach 立即在 path 上挂载 POST 路由，然后在后台把 kind 对应的 hook 注册到
// 全部上游并写入 Registry。描述构造错误（如缺少类名）同步记录，见 DescriptorErrors；
// 远端注册失败只记录日志。两种情况下路由都保持可用。
func (h *Hooks) Attach(path string, kind hooks.Kind, handler fiber.Handler) *Registration {
	path = normalizePath(path)
	h.app.Post(path, handler)

	reg := &Registration{Path: path, Kind: kind, done: make(chan struct{})}
	h.mu.Lock()
	h.regs = append(h.regs, reg)
	h.mu.Unlock()

	fields := logrus.Fields{"action": "hook_register", "path": path, "kind": kind.String()}
	hook, err := kind.Build(h.cfg.ServerPathname() + path)
	if err != nil {
		reg.err = err
		close(reg.done)
		h.logger.WithFields(fields).WithError(err).Error("invalid hook descriptor")
		return reg
	}
	reg.hook = hook

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		defer close(reg.done)
		h.register(reg, fields)
	}()
	return reg
}

func (h *Hooks) register(reg *Registration, fields logrus.Fields) {
	results := h.resources.Create(h.base, reg.hook)
	if h.base.Err() != nil {
		h.withdraw(reg, fields)
		return
	}
	h.registry.Upsert(results)
	for server := range results {
		reg.servers = append(reg.servers, server)
	}
	sort.Strings(reg.servers)

	if len(results) == 0 {
		reg.err = fmt.Errorf("%w: %s", ErrNotRegistered, reg.hook.ID())
		h.logger.WithFields(fields).Error("hook_register_failed")
		return
	}
	fields["servers"] = reg.servers
	h.logger.WithFields(fields).Info("hook_registered")
}

// withdraw 处理 Stop 之后才结束的注册：被取消的 POST 可能已在上游提交，
// 因此不写入 Registry，直接在全部服务器上删除该 hook。
func (h *Hooks) withdraw(reg *Registration, fields logrus.Fields) {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.ShutdownGrace.DurationValue())
	defer cancel()

	deleted := h.resources.Delete(ctx, reg.hook)
	reg.err = fmt.Errorf("%w: %s: %v", ErrNotRegistered, reg.hook.ID(), context.Canceled)
	fields["servers"] = deleted
	h.logger.WithFields(fields).Warn("hook_register_withdrawn")
}

// DescriptorErrors 汇总所有无法构造 hook 描述的路由，属于配置错误。
func (h *Hooks) DescriptorErrors() error {
	var errs []error
	for _, reg := range h.Registrations() {
		select {
		case <-reg.done:
		default:
			continue
		}
		if reg.hook == nil && reg.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", reg.Path, reg.err))
		}
	}
	return errors.Join(errs...)
}

// Wait 阻塞直到所有后台注册结束或 ctx 结束。
func (h *Hooks) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop 取消仍在进行的注册请求；之后结束的注册会撤回已创建的 hook。
func (h *Hooks) Stop() {
	h.cancel()
}

// Registrations 返回已挂载路由的注册句柄（按挂载顺序）。
func (h *Hooks) Registrations() []*Registration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Registration(nil), h.regs...)
}

// Registry 返回共享的 hook 登记表。
func (h *Hooks) Registry() *hooks.Registry { return h.registry }

// Function 挂载一个云函数路由：解码 FunctionRequest[P]，调用 fn，成功结果写入 success。
func Function[P, R any](h *Hooks, path, name string, fn func(c *Context, req *FunctionRequest[P]) (R, error)) *Registration {
	route := "function:" + name
	handler := h.webhook(route, func(c *Context) (interface{}, error) {
		var req FunctionRequest[P]
		if err := decodeBody(c, &req); err != nil {
			return nil, err
		}
		return fn(c, &req)
	})
	return h.Attach(path, hooks.Function(name), handler)
}

// Trigger 挂载一个触发器路由，kind 应由 hooks.ObjectTrigger 或 hooks.UntypedTrigger 构造。
func Trigger[O, R any](h *Hooks, path string, kind hooks.Kind, fn func(c *Context, req *TriggerRequest[O]) (R, error)) *Registration {
	handler := h.webhook(kind.String(), func(c *Context) (interface{}, error) {
		var req TriggerRequest[O]
		if err := decodeBody(c, &req); err != nil {
			return nil, err
		}
		return fn(c, &req)
	})
	return h.Attach(path, kind, handler)
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
