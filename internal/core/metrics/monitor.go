package metrics

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

var log = logger.Logger("metrics")

// Sink 快照接收方
type Sink interface {
	Publish(s *types.TrafficSnapshot)
}

// SinkFunc 函数形式的 Sink
type SinkFunc func(s *types.TrafficSnapshot)

// Publish 实现 Sink
func (f SinkFunc) Publish(s *types.TrafficSnapshot) { f(s) }

// ============================================================================
//                              Monitor
// ============================================================================

// Monitor 流量监控插件
type Monitor struct {
	pipeline.Base

	cfg   Config
	sched pkgif.Scheduler

	c      counters
	online atomic.Int64

	// 累计值，只由快照任务更新
	totalConnections atomic.Int64
	totalProcessed   atomic.Int64

	mu       sync.Mutex
	sinks    []Sink
	stats    pkgif.StatsProvider
	task     pkgif.Cancelable
	lastTime time.Time
	last     *types.TrafficSnapshot
}

var _ pkgif.Plugin = (*Monitor)(nil)

// NewMonitor 创建流量监控插件
func NewMonitor(cfg Config, sched pkgif.Scheduler, sinks ...Sink) (*Monitor, error) {
	if sched == nil {
		return nil, ErrNoScheduler
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{
		Base:     pipeline.NewBase(config.PluginMonitor),
		cfg:      cfg,
		sched:    sched,
		sinks:    sinks,
		lastTime: sched.Now(),
	}, nil
}

// AddSink 追加快照接收方
func (m *Monitor) AddSink(s Sink) {
	m.mu.Lock()
	m.sinks = append(m.sinks, s)
	m.mu.Unlock()
}

// SetStatsProvider 设置引擎统计源
func (m *Monitor) SetStatsProvider(p pkgif.StatsProvider) {
	m.mu.Lock()
	m.stats = p
	m.mu.Unlock()
}

// ============================================================================
//                              插件钩子
// ============================================================================

// OnAccept 装配计数装饰器
func (m *Monitor) OnAccept(ch pkgif.Channel) (pkgif.Channel, error) {
	return &countingChannel{Wrapper: channel.Wrap(ch), c: &m.c}, nil
}

// OnMessage 计数，不拒绝
func (m *Monitor) OnMessage(pkgif.Session, any) bool {
	m.c.processed.Add(1)
	return true
}

// OnStateEvent 统计连接与处理异常
func (m *Monitor) OnStateEvent(_ pkgif.Session, status types.StateStatus, _ error) {
	switch status {
	case types.StateNewSession:
		m.c.connects.Add(1)
		m.online.Add(1)
	case types.StateSessionClosed:
		m.c.disconnects.Add(1)
		m.online.Add(-1)
	case types.StateProcessException:
		m.c.failures.Add(1)
	}
}

// ============================================================================
//                              周期快照
// ============================================================================

// Start 按配置周期启动快照任务
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.task != nil {
		return ErrAlreadyStarted
	}
	m.lastTime = m.sched.Now()
	m.task = m.sched.ScheduleRecurring(m.cfg.Interval, m.cfg.Interval, func() { m.Snapshot() })
	log.Info("traffic monitor started", "interval", m.cfg.Interval)
	return nil
}

// Stop 停止快照任务
func (m *Monitor) Stop() {
	m.mu.Lock()
	task := m.task
	m.task = nil
	m.mu.Unlock()
	if task != nil {
		task.Cancel()
		log.Info("traffic monitor stopped")
	}
}

// Close 停止快照任务并关闭持有资源的 Sink
func (m *Monitor) Close() error {
	m.Stop()

	m.mu.Lock()
	sinks := m.sinks
	m.sinks = nil
	m.mu.Unlock()

	var err error
	for _, s := range sinks {
		if c, ok := s.(io.Closer); ok {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}

// Snapshot 读取并清零周期计数，生成快照并分发
func (m *Monitor) Snapshot() *types.TrafficSnapshot {
	p := m.c.drain()
	now := m.sched.Now()

	m.mu.Lock()
	elapsed := now.Sub(m.lastTime)
	m.lastTime = now
	stats := m.stats
	sinks := append([]Sink(nil), m.sinks...)
	m.mu.Unlock()

	s := &types.TrafficSnapshot{
		Time:              now,
		Interval:          elapsed,
		InflowBytes:       p.inflow,
		OutflowBytes:      p.outflow,
		ReadCount:         p.reads,
		WriteCount:        p.writes,
		ProcessedMessages: p.processed,
		ProcessFailures:   p.failures,
		NewConnections:    p.connects,
		Disconnections:    p.disconnects,
		Online:            m.online.Load(),
		TotalConnections:  m.totalConnections.Add(p.connects),
		TotalProcessed:    m.totalProcessed.Add(p.processed),
		InflowRate:        perSecond(p.inflow, elapsed),
		OutflowRate:       perSecond(p.outflow, elapsed),
		MessageRate:       perSecond(p.processed, elapsed),
	}
	if stats != nil {
		es := stats.Stats()
		s.Engine = &es
	}

	m.mu.Lock()
	m.last = s
	m.mu.Unlock()

	for _, sink := range sinks {
		sink.Publish(s)
	}
	return s
}

// Last 返回最近一次快照，尚无快照时为 nil
func (m *Monitor) Last() *types.TrafficSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func perSecond(n int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}
