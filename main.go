package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/asset-hub/asset-hub/internal/assets"
	"github.com/asset-hub/asset-hub/internal/compress"
	"github.com/asset-hub/asset-hub/internal/config"
	"github.com/asset-hub/asset-hub/internal/ident"
	"github.com/asset-hub/asset-hub/internal/logging"
	"github.com/asset-hub/asset-hub/internal/plugin"
	"github.com/asset-hub/asset-hub/internal/server"
	"github.com/asset-hub/asset-hub/internal/server/routes"
	"github.com/asset-hub/asset-hub/internal/version"
)

// cliOptions 承载解析后的命令行选项，测试可直接构造。
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
	os.Exit(run(opts))
}

// run 执行选定的 CLI 流程并返回进程退出码。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["minify"] = cfg.Global.Minify
		fields["plugins_enabled"] = cfg.Global.PluginsEnabled()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	registry, err := plugin.NewRegistry(cfg.Global.PluginRoot, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "扫描插件目录失败: %v\n", err)
		return 1
	}

	if cfg.Global.WatchPlugins {
		watcher, err := plugin.NewWatcher(registry, logger)
		if err != nil {
			fmt.Fprintf(stdErr, "启动插件监听失败: %v\n", err)
			return 1
		}
		go watcher.Start()
		defer watcher.Close()
	}

	pool, err := compress.NewPool(cfg.Global.PoolWorkers, nil, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化压缩池失败: %v\n", err)
		return 1
	}

	handler, err := buildAssetHandler(cfg, registry, pool, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建资产处理器失败: %v\n", err)
		return 1
	}

	// 启动遵循“配置 → 插件注册表 → 压缩池 → 资产处理器 → Fiber server”顺序，
	// 保证所有请求共享同一套解析与压缩实例。
	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["asset_root"] = cfg.Global.AssetRoot
	fields["minify"] = cfg.Global.Minify
	fields["pool_workers"] = pool.Size()
	fields["plugins"] = registry.Len()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, handler, registry, pool, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

func buildAssetHandler(cfg *config.Config, registry *plugin.Registry, pool *compress.Pool, logger *logrus.Logger) (*assets.Handler, error) {
	resolver, err := assets.NewResolver(cfg.Global.AssetRoot, cfg.Global.DependencyDir, registry)
	if err != nil {
		return nil, err
	}
	return assets.NewHandler(
		resolver,
		assets.NewOracle(resolver.Root()),
		assets.NewAssembler(logger, cfg.Global.Minify),
		pool,
		logger,
		assets.Options{
			MaxAge:       cfg.Global.MaxAge.DurationValue(),
			Minify:       cfg.Global.Minify,
			SkipPatterns: cfg.Global.MinifySkip,
		},
	)
}

// parseCLIFlags 解析命令行参数，配置路径按 flag、环境变量、默认值的顺序取值。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("asset-hub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 ASSET_HUB_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("ASSET_HUB_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(cfg *config.Config, handler *assets.Handler, registry *plugin.Registry, pool *compress.Pool, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		ListenPort: port,
	})
	if err != nil {
		return err
	}

	routes.RegisterAssetRoutes(app, handler, logger)
	routes.RegisterDocumentRoutes(app, ident.Default(), logger)
	routes.RegisterStatusRoutes(app, routes.StatusInfo{
		AssetRoot:     cfg.Global.AssetRoot,
		Minify:        cfg.Global.Minify,
		PoolWorkers:   pool.Size(),
		MaxAgeSeconds: cfg.Global.MaxAgeSeconds(),
		WatchPlugins:  cfg.Global.WatchPlugins,
	}, registry)

	timeout := cfg.Global.ShutdownTimeout.DurationValue()
	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-signalCtx.Done()
		logger.WithField("action", "shutdown").Info("收到退出信号，开始排空")
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			logger.WithField("action", "shutdown").Warn(err.Error())
		}
	}()

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
		return err
	}

	// Listen 返回即服务停止，压缩池排空在途任务后退出。
	if err := pool.Shutdown(timeout); err != nil {
		logger.WithField("action", "shutdown").Warn(err.Error())
	}
	return nil
}
