package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/parse-server-go/parse-server-go/internal/cloud"
	"github.com/parse-server-go/parse-server-go/internal/config"
	"github.com/parse-server-go/parse-server-go/internal/logging"
	"github.com/parse-server-go/parse-server-go/internal/server"
	"github.com/parse-server-go/parse-server-go/internal/server/routes"
	"github.com/parse-server-go/parse-server-go/internal/version"
)

// defaultConfigPath 缺失时回退到纯环境变量配置。
const defaultConfigPath = "config.toml"

// configEnv 可覆盖默认配置路径，--config 优先级更高。
const configEnv = "PARSE_SERVER_GO_CONFIG"

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(ctx context.Context, opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		for key, value := range cfg.Summary() {
			fields[key] = value
		}
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 仅服务模式写入进程级配置。
	if err := config.Initialize(cfg); err != nil {
		fmt.Fprintf(stdErr, "初始化配置失败: %v\n", err)
		return 1
	}

	// 启动顺序：配置 → logger → Server（上游客户端、注册表、Fiber app）→ 诊断路由 → Cloud Code 路由。
	srv, err := server.New(server.Options{Config: cfg, Logger: logger})
	if err != nil {
		fmt.Fprintf(stdErr, "构建服务失败: %v\n", err)
		return 1
	}
	routes.RegisterDiagnostics(srv.App(), srv)
	regs := cloud.AttachAll(srv.Hooks())

	fields := logging.BaseFields("startup", opts.configPath)
	for key, value := range cfg.Summary() {
		fields[key] = value
	}
	fields["routes"] = len(regs)
	fields["listen_addr"] = cfg.ListenAddr()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务运行失败: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig 读取配置文件；默认路径不存在时只使用环境变量。
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return config.Load(path)
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("parse-server-go", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 "+configEnv+" 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv(configEnv)
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = defaultConfigPath
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}
