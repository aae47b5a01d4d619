// Package logger 提供 netplug 的统一日志系统
//
// 基于标准库 log/slog，支持：
//   - 按子系统配置日志级别
//   - 环境变量配置（NETPLUG_LOG_LEVEL, NETPLUG_LOG_FORMAT）
//   - 运行时调整级别与输出目标
//
// 使用示例:
//
//	package gater
//
//	import "github.com/dep2p/go-netplug/internal/util/logger"
//
//	var log = logger.Logger("gater")
//
//	func foo() {
//	    log.Warn("connection rejected", "remote", addr)
//	}
//
// 环境变量配置:
//
//	# 所有子系统为 info，ratelimit 为 debug
//	NETPLUG_LOG_LEVEL=ratelimit=debug,info
//
//	# 使用 JSON 格式输出
//	NETPLUG_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// levels 各子系统的动态级别
	levels sync.Map // map[string]*slog.LevelVar
)

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回相同实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	lv := new(slog.LevelVar)
	lv.Set(cfg.LevelForSubsystem(subsystem))

	l := slog.New(newHandler(subsystem, lv, cfg))

	actual, loaded := loggers.LoadOrStore(subsystem, l)
	if !loaded {
		levels.Store(subsystem, lv)
	}
	return actual.(*slog.Logger)
}

// SetLevel 动态设置子系统的日志级别
//
//	logger.SetLevel("tracer", slog.LevelDebug)
func SetLevel(subsystem string, level slog.Level) {
	if lv, ok := levels.Load(subsystem); ok {
		lv.(*slog.LevelVar).Set(level)
	}
}

// SetGlobalLevel 设置所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	levels.Range(func(_, value any) bool {
		value.(*slog.LevelVar).Set(level)
		return true
	})
}

// Apply 按 NETPLUG_LOG_LEVEL 语法应用级别配置
//
// 已创建的子系统立即生效，之后创建的子系统同样使用该配置。
func Apply(levelConfig string) {
	cfg := ConfigFromEnv()
	configMu.Lock()
	parseLevelConfig(cfg, levelConfig)
	configMu.Unlock()

	levels.Range(func(key, value any) bool {
		value.(*slog.LevelVar).Set(cfg.LevelForSubsystem(key.(string)))
		return true
	})
}

// Discard 返回一个丢弃所有日志的 Logger（用于测试）
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 Logger 同样会重定向到新的 writer。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
