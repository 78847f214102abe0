package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/parse-server-go/parse-server-go/internal/config"
	"github.com/parse-server-go/parse-server-go/internal/hooks"
	"github.com/parse-server-go/parse-server-go/internal/logging"
	"github.com/parse-server-go/parse-server-go/internal/parse"
)

// ErrUnhealthy 表示 fail-fast 策略下启动健康检查失败。
var ErrUnhealthy = errors.New("parse server health check failed")

// Options 汇总 Server 的外部依赖；Parse 为空时基于 NewUpstreamClient 创建。
type Options struct {
	Config *config.Config
	Logger *logrus.Logger
	Parse  *parse.Client
}

// Server 组装 fiber 应用、hook 注册与上游状态，并负责启动与关闭顺序。
type Server struct {
	cfg       *config.Config
	logger    *logrus.Logger
	app       *fiber.App
	parse     *parse.Client
	resources *hooks.ResourceClient
	registry  *hooks.Registry
	upstreams *UpstreamRegistry
	hooks     *Hooks
}

// New 构建 Server。路由通过 Hooks() 挂载，诊断接口由 routes 包挂载。
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	client := opts.Parse
	if client == nil {
		var err error
		client, err = parse.NewClient(NewUpstreamClient(opts.Config), opts.Config)
		if err != nil {
			return nil, err
		}
	}

	upstreams, err := NewUpstreamRegistry(opts.Config)
	if err != nil {
		return nil, err
	}
	resources, err := hooks.NewResourceClient(client, logger)
	if err != nil {
		return nil, err
	}
	app, err := NewApp(AppOptions{Logger: logger, Config: opts.Config})
	if err != nil {
		return nil, err
	}
	registry := hooks.NewRegistry()
	h, err := NewHooks(HooksOptions{
		App:       app,
		Config:    opts.Config,
		Logger:    logger,
		Parse:     client,
		Resources: resources,
		Registry:  registry,
		Upstreams: upstreams,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:       opts.Config,
		logger:    logger,
		app:       app,
		parse:     client,
		resources: resources,
		registry:  registry,
		upstreams: upstreams,
		hooks:     h,
	}, nil
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Hooks() *Hooks { return s.hooks }

func (s *Server) Registry() *hooks.Registry { return s.registry }

func (s *Server) Upstreams() *UpstreamRegistry { return s.upstreams }

// Prepare 在开始监听前执行：拒绝无法构造描述的路由，并按 HealthPolicy 处理健康检查。
// fail-fast 策略下失败会先清理已注册的 hook，再返回 ErrUnhealthy。
func (s *Server) Prepare(ctx context.Context) error {
	if err := s.hooks.DescriptorErrors(); err != nil {
		s.Teardown()
		return fmt.Errorf("invalid hook routes: %w", err)
	}

	err := CheckUpstreams(ctx, s.parse, s.upstreams, s.logger)
	if err == nil {
		return nil
	}
	if !s.cfg.HealthPolicy.FailFast() {
		s.logger.WithFields(logrus.Fields{
			"action": "health_check",
			"policy": string(s.cfg.HealthPolicy),
		}).Warn("continuing with unhealthy parse servers")
		return nil
	}
	s.Teardown()
	return fmt.Errorf("%w: %v", ErrUnhealthy, err)
}

// Run 执行 Prepare 后开始监听，直到 ctx 结束或监听失败；返回前完成 Teardown 与关闭。
func (s *Server) Run(ctx context.Context) error {
	if err := s.Prepare(ctx); err != nil {
		return err
	}

	listenCfg := fiber.ListenConfig{DisableStartupMessage: true}
	if s.cfg.TLSEnabled() {
		listenCfg.CertFile = s.cfg.TLSCertFile
		listenCfg.CertKeyFile = s.cfg.TLSKeyFile
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"action":      "listen",
			"addr":        s.cfg.ListenAddr(),
			"server_path": s.cfg.ServerPathname(),
		}).Info("Fiber 服务启动")
		errCh <- s.app.Listen(s.cfg.ListenAddr(), listenCfg)
	}()

	select {
	case err := <-errCh:
		s.Teardown()
		return err
	case <-ctx.Done():
	}

	s.Teardown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace.DurationValue())
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Teardown 等待后台注册结束，取消仍未完成的注册并等待其撤回，然后删除所有已登记的 hook。
// 每个阶段各自最多等待 ShutdownGrace。
func (s *Server) Teardown() hooks.DrainReport {
	grace := s.cfg.ShutdownGrace.DurationValue()

	if err := s.waitPending(grace); err != nil {
		s.logger.WithFields(logrus.Fields{"action": "teardown"}).
			WithError(err).Warn("pending hook registrations did not finish")
	}
	s.hooks.Stop()
	// 被取消的注册在返回前会删除自己，Drain 的快照必须在它们之后。
	if err := s.waitPending(grace); err != nil {
		s.logger.WithFields(logrus.Fields{"action": "teardown"}).
			WithError(err).Error("cancelled hook registrations did not finish")
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), grace)
	defer cancelDrain()
	return hooks.Drain(drainCtx, s.resources, s.registry, s.logger)
}

func (s *Server) waitPending(grace time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return s.hooks.Wait(ctx)
}
