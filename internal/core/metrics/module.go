package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Scheduler  pkgif.Scheduler
	UnifiedCfg *config.Config `optional:"true"`
	EventBus   pkgif.EventBus `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Monitor      *Monitor
	Exporter     *Exporter
	Registration pipeline.Registration `group:"plugins"`
}

// ProvideMonitor 按配置装配监控插件及其 Sink
//
// 未启用 Prometheus 时 Exporter 为 nil。
func ProvideMonitor(input ModuleInput) (ModuleOutput, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)

	m, err := NewMonitor(cfg, input.Scheduler, LogSink{})
	if err != nil {
		return ModuleOutput{}, err
	}

	var exp *Exporter
	if cfg.Prometheus {
		exp = NewExporter(cfg.Namespace)
		m.AddSink(exp)
	}
	if cfg.PublishEvents && input.EventBus != nil {
		es, err := NewEventSink(input.EventBus)
		if err != nil {
			return ModuleOutput{}, err
		}
		m.AddSink(es)
	}

	return ModuleOutput{Monitor: m, Exporter: exp, Registration: pipeline.Register(m)}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name,
		fx.Provide(ProvideMonitor),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Monitor    *Monitor
	Exporter   *Exporter
	UnifiedCfg *config.Config `optional:"true"`
}

func registerLifecycle(input lifecycleInput) {
	cfg := ConfigFromUnified(input.UnifiedCfg)

	var srv *http.Server
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := input.Monitor.Start(); err != nil {
				return err
			}
			if cfg.MetricsAddr == "" || input.Exporter == nil {
				return nil
			}
			ln, err := net.Listen("tcp", cfg.MetricsAddr)
			if err != nil {
				input.Monitor.Stop()
				return err
			}
			srv = newMetricsServer(input.Exporter)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server stopped", "err", err)
				}
			}()
			log.Info("metrics endpoint listening", "addr", ln.Addr().String())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var err error
			if srv != nil {
				err = srv.Shutdown(ctx)
			}
			return multierr.Append(err, input.Monitor.Close())
		},
	})
}

func newMetricsServer(exp *Exporter) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", exp.Handler())
	return &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "metrics"
	// Description 模块描述
	Description = "流量监控插件，周期快照并导出 Prometheus 指标"
)
