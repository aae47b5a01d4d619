package liveness

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

var log = logger.Logger("liveness")

// ============================================================================
//                              sessionState 会话状态
// ============================================================================

type sessionState struct {
	// lastActive 调度器时钟的 UnixNano
	lastActive atomic.Int64

	mu      sync.Mutex
	task    pkgif.Cancelable
	stopped bool
}

func (st *sessionState) touch(now time.Time) {
	st.lastActive.Store(now.UnixNano())
}

func (st *sessionState) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, st.lastActive.Load()))
}

// stop 取消待执行的检查，返回是否为首次停止
func (st *sessionState) stop() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.stopped {
		return false
	}
	st.stopped = true
	if st.task != nil {
		st.task.Cancel()
	}
	return true
}

// ============================================================================
//                              Service 实现
// ============================================================================

// Service 心跳插件
type Service struct {
	pipeline.Base

	cfg   Config
	sched pkgif.Scheduler

	probe       ProbeFunc
	onTimeout   TimeoutFunc
	isHeartbeat Classifier
	respond     func(pkgif.Session, any)

	sessions sync.Map // session ID -> *sessionState
	tracked  atomic.Int64

	probes   atomic.Int64
	timeouts atomic.Int64
}

var _ pkgif.Plugin = (*Service)(nil)

// Stats 心跳统计
type Stats struct {
	Tracked  int64
	Probes   int64
	Timeouts int64
}

// NewService 创建心跳插件，配置不合法时返回错误
func NewService(cfg Config, sched pkgif.Scheduler, opts ...Option) (*Service, error) {
	if sched == nil {
		return nil, ErrNoScheduler
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		Base:  pipeline.NewBase(config.PluginHeartbeat),
		cfg:   cfg,
		sched: sched,
		onTimeout: func(sess pkgif.Session) {
			_ = sess.Close(true)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Timeout == 0 {
		log.Info("heartbeat timeout disabled, sessions are probed but never closed", "heart_rate", cfg.HeartRate)
	}
	return s, nil
}

// OnMessage 刷新活动时间，心跳消息不交给处理器
func (s *Service) OnMessage(sess pkgif.Session, msg any) bool {
	if v, ok := s.sessions.Load(sess.ID()); ok {
		v.(*sessionState).touch(s.sched.Now())
	}

	if s.isHeartbeat == nil || !s.isHeartbeat(msg) {
		return true
	}
	if s.respond != nil {
		s.respond(sess, msg)
	}
	return false
}

// OnStateEvent 在 NEW_SESSION 开始跟踪，在 SESSION_CLOSED 清理
func (s *Service) OnStateEvent(sess pkgif.Session, status types.StateStatus, _ error) {
	switch status {
	case types.StateNewSession:
		s.track(sess)
	case types.StateSessionClosed:
		s.forget(sess.ID())
	}
}

func (s *Service) track(sess pkgif.Session) {
	st := &sessionState{}
	st.touch(s.sched.Now())

	if prev, loaded := s.sessions.Swap(sess.ID(), st); loaded {
		prev.(*sessionState).stop()
	} else {
		s.tracked.Add(1)
	}
	s.arm(sess, st)
}

func (s *Service) forget(id string) {
	if v, ok := s.sessions.LoadAndDelete(id); ok {
		s.tracked.Add(-1)
		v.(*sessionState).stop()
	}
}

// arm 安排下一次检查
func (s *Service) arm(sess pkgif.Session, st *sessionState) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.stopped {
		return
	}
	st.task = s.sched.ScheduleOnce(s.cfg.HeartRate, func() { s.check(sess, st) })
}

func (s *Service) check(sess pkgif.Session, st *sessionState) {
	st.mu.Lock()
	stopped := st.stopped
	st.mu.Unlock()
	if stopped {
		return
	}

	if !sess.IsValid() {
		s.forget(sess.ID())
		return
	}

	idle := st.idle(s.sched.Now())

	if s.cfg.Timeout > 0 && idle > s.cfg.Timeout {
		if !st.stop() {
			return
		}
		if s.sessions.CompareAndDelete(sess.ID(), st) {
			s.tracked.Add(-1)
		}
		s.timeouts.Add(1)
		log.Info("session timed out", "session", sess.ID(), "remote", sess.RemoteAddr(), "idle", idle)
		s.onTimeout(sess)
		return
	}

	if idle > s.cfg.HeartRate && s.probe != nil {
		s.probes.Add(1)
		if err := s.probe(sess); err != nil {
			log.Debug("heartbeat probe failed", "session", sess.ID(), "err", err)
		}
	}
	s.arm(sess, st)
}

// Stop 取消所有会话的检查
func (s *Service) Stop() error {
	s.sessions.Range(func(k, v any) bool {
		s.forget(k.(string))
		return true
	})
	return nil
}

// Stats 返回统计
func (s *Service) Stats() Stats {
	return Stats{
		Tracked:  s.tracked.Load(),
		Probes:   s.probes.Load(),
		Timeouts: s.timeouts.Load(),
	}
}
