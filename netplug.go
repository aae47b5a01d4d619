package netplug

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-netplug/internal/core/engine"
	"github.com/dep2p/go-netplug/internal/core/eventbus"
	"github.com/dep2p/go-netplug/internal/core/gater"
	"github.com/dep2p/go-netplug/internal/core/metrics"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "netplug " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// startTimeout 容器启动超时
const startTimeout = 30 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              Server
// ════════════════════════════════════════════════════════════════════════════

// Server 可插拔拦截流水线服务
type Server struct {
	mu      sync.Mutex
	app     *fx.App
	started bool
	closed  bool

	engine    *engine.Engine
	pipeline  *pipeline.Pipeline
	bus       *eventbus.Bus
	monitor   *metrics.Monitor
	exporter  *metrics.Exporter
	blacklist *gater.Blacklist
}

// New 按选项装配服务，不开始监听
func New(opts ...Option) (*Server, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}

	s := &Server{}
	app, err := buildFxApp(o, s)
	if err != nil {
		return nil, err
	}
	s.app = app
	return s, nil
}

// Start 启动全部模块并开始接受连接
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrServerClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := s.app.Start(startCtx); err != nil {
		log.Error("server start failed", "err", err)
		return fmt.Errorf("start failed: %w", err)
	}
	s.started = true
	log.Info("server started", "addr", s.engine.Addr().String(), "plugins", len(s.pipeline.Plugins()))
	return nil
}

// Stop 停止服务并释放资源，之后不能再次启动
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if !s.started {
		return nil
	}
	err := s.app.Stop(ctx)
	log.Info("server stopped", "err", err)
	return err
}

// Addr 监听地址，未启动时为 nil
func (s *Server) Addr() net.Addr {
	return s.engine.Addr()
}

// Pipeline 插件流水线
func (s *Server) Pipeline() *pipeline.Pipeline {
	return s.pipeline
}

// Plugins 按执行顺序返回已注册插件
func (s *Server) Plugins() []pkgif.Plugin {
	return s.pipeline.Plugins()
}

// Stats 引擎统计
func (s *Server) Stats() types.EngineStats {
	return s.engine.Stats()
}

// Session 按 ID 查找活跃会话
func (s *Server) Session(id string) (pkgif.Session, bool) {
	return s.engine.Session(id)
}

// EventBus 事件总线，可订阅 types.EvtSessionState 与 types.EvtTrafficSnapshot
func (s *Server) EventBus() pkgif.EventBus {
	return s.bus
}

// Monitor 流量监控插件，未启用时为 nil
func (s *Server) Monitor() *metrics.Monitor {
	return s.monitor
}

// Exporter Prometheus 导出器，未启用时为 nil
func (s *Server) Exporter() *metrics.Exporter {
	return s.exporter
}

// Blacklist 黑名单插件，未启用时为 nil
func (s *Server) Blacklist() *gater.Blacklist {
	return s.blacklist
}
