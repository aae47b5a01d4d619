// Package main 提供 netplug 命令行入口
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dep2p/go-netplug"
	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/util/logger"
)

var log = logger.Logger("cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//   命令行参数：运行时覆盖（监听地址、指标地址、预设）
//   JSON 配置文件：插件开关与参数
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile  = flag.String("config", "", "配置文件路径（JSON）")
	listenAddr  = flag.String("listen", "", "监听地址，覆盖配置文件")
	metricsAddr = flag.String("metrics", "", "Prometheus /metrics 监听地址，覆盖配置文件")
	preset      = flag.String("preset", "", "预设配置 (minimal/standard/secure)")
	logFile     = flag.String("log", "", "日志文件路径，默认输出到标准错误")
	logLevel    = flag.String("log-level", "", "日志级别，语法同 NETPLUG_LOG_LEVEL")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

// stopTimeout 退出时等待模块停止的时间
const stopTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}

	logFileHandle, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "警告: %v\n", err)
	}
	if logFileHandle != nil {
		defer func() { _ = logFileHandle.Close() }()
	}

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	srv, err := netplug.New(netplug.WithConfig(cfg))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting netplug", "version", netplug.Version, "commit", netplug.GitCommit)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	printServerInfo(srv, cfg)
	waitForSignal()

	fmt.Println("\n正在关闭...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	return srv.Stop(stopCtx)
}

// buildConfig 加载配置
//
// 优先级（从高到低）：命令行参数、预设、配置文件、默认值。
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := config.ApplyPreset(cfg, *preset); err != nil {
		return nil, err
	}
	if *listenAddr != "" {
		cfg.Engine.ListenAddr = *listenAddr
	}
	if *metricsAddr != "" {
		cfg.Monitor.Enable = true
		cfg.Monitor.Prometheus = true
		cfg.Monitor.MetricsAddr = *metricsAddr
	}
	if *logLevel != "" {
		cfg.Diagnostics.LogLevel = *logLevel
	}
	return cfg, cfg.Validate()
}

func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}

func setupLogging() (*os.File, error) {
	if *logFile == "" {
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(*logFile), 0750); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	file, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}

	logger.SetOutput(file)
	return file, nil
}

func printServerInfo(srv *netplug.Server, cfg *config.Config) {
	fmt.Printf("📦 %s\n", netplug.VersionInfo())
	fmt.Printf("监听地址: %s\n", srv.Addr())
	fmt.Print("插件顺序:")
	for _, p := range srv.Plugins() {
		fmt.Printf(" %s", p.Name())
	}
	fmt.Println()
	if cfg.Monitor.Enable && cfg.Monitor.MetricsAddr != "" {
		fmt.Printf("指标地址: http://%s/metrics\n", cfg.Monitor.MetricsAddr)
	}
	fmt.Println("服务已启动，按 Ctrl+C 退出")
}

func printVersion() {
	fmt.Printf("netplug %s\n", netplug.Version)
	if netplug.GitCommit != "" {
		fmt.Printf("  commit: %s\n", netplug.GitCommit)
	}
	if netplug.BuildDate != "" {
		fmt.Printf("  built:  %s\n", netplug.BuildDate)
	}
}
