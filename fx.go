package netplug

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/engine"
	"github.com/dep2p/go-netplug/internal/core/eventbus"
	"github.com/dep2p/go-netplug/internal/core/gater"
	"github.com/dep2p/go-netplug/internal/core/liveness"
	"github.com/dep2p/go-netplug/internal/core/metrics"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	"github.com/dep2p/go-netplug/internal/core/ratelimit"
	"github.com/dep2p/go-netplug/internal/core/scheduler"
	"github.com/dep2p/go-netplug/internal/core/security/tls"
	"github.com/dep2p/go-netplug/internal/core/tracer"
	"github.com/dep2p/go-netplug/internal/core/transport/sockopt"
	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

var log = logger.Logger("netplug")

// buildFxApp 构建 Fx 应用
//
// 基础模块总是加载（Scheduler, EventBus, Pipeline, Engine），
// 插件模块按各自的 Enable 开关加载。插件注册到 "plugins" 值组，
// 由 Pipeline 模块按 config.Pipeline.Order 排序。
func buildFxApp(o *options, s *Server) (*fx.App, error) {
	cfg := o.config

	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Diagnostics.LogLevel != "" {
		logger.Apply(cfg.Diagnostics.LogLevel)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 基础模块
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),
		scheduler.Module(),
		eventbus.Module(),
		pipeline.Module(),
		engine.Module(),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 插件模块（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if cfg.Socket.Enable {
		modules = append(modules, sockopt.Module())
	}
	if cfg.Blacklist.Enable {
		modules = append(modules, gater.Module())
	}
	if cfg.RateLimit.Enable {
		modules = append(modules, ratelimit.Module())
	}
	if cfg.Monitor.Enable {
		modules = append(modules, metrics.Module())
	}
	if cfg.TLS.Enable {
		modules = append(modules, tls.Module())
	}
	if cfg.Tracer.Enable {
		modules = append(modules, tracer.Module())
		for _, obs := range o.observers {
			modules = append(modules, supplyGroup(obs, `group:"tracer_options"`))
		}
	}
	if cfg.Heartbeat.Enable {
		modules = append(modules, liveness.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户扩展
	// ════════════════════════════════════════════════════════════════════════
	for _, p := range o.plugins {
		modules = append(modules, supplyGroup(pipeline.Register(p), `group:"plugins"`))
	}
	if o.decoder != nil {
		d := o.decoder
		modules = append(modules, fx.Provide(func() pkgif.Decoder { return d }))
	}
	if o.processor != nil {
		p := o.processor
		modules = append(modules, fx.Provide(func() pkgif.Processor { return p }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. 组件注入与跨模块连接
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectComponents(s)))
	modules = append(modules, o.fxOptions...)

	// ════════════════════════════════════════════════════════════════════════
	// 6. Fx 日志
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.WithLogger(fxLogger(cfg.Diagnostics)))

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// supplyGroup 把单个值提供到指定值组
func supplyGroup[T any](v T, tag string) fx.Option {
	return fx.Provide(fx.Annotate(
		func() T { return v },
		fx.ResultTags(tag),
	))
}

// fxLogger 只在开启 Diagnostics.FxEvents 时输出容器事件
func fxLogger(diag config.DiagnosticsConfig) func() fxevent.Logger {
	return func() fxevent.Logger {
		if !diag.FxEvents {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		zl, err := zap.NewDevelopment()
		if err != nil {
			log.Warn("fx event logger unavailable", "err", err)
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		return &fxevent.ZapLogger{Logger: zl}
	}
}

// componentsInput 注入到 Server 的组件，插件组件在未启用时为 nil
type componentsInput struct {
	fx.In

	Engine    *engine.Engine
	Pipeline  *pipeline.Pipeline
	Bus       *eventbus.Bus
	Monitor   *metrics.Monitor  `optional:"true"`
	Exporter  *metrics.Exporter `optional:"true"`
	Blacklist *gater.Blacklist  `optional:"true"`
}

// injectComponents 保存组件引用，并把引擎统计接入监控快照
//
// 监控插件先于引擎构造（引擎依赖流水线，流水线依赖监控插件），
// 统计源只能在容器装配完成后设置。
func injectComponents(s *Server) func(componentsInput) {
	return func(in componentsInput) {
		s.engine = in.Engine
		s.pipeline = in.Pipeline
		s.bus = in.Bus
		s.monitor = in.Monitor
		s.exporter = in.Exporter
		s.blacklist = in.Blacklist

		if in.Monitor != nil {
			in.Monitor.SetStatsProvider(in.Engine)
		}
	}
}
