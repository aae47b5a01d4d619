package engine

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

var log = logger.Logger("engine")

// Hooks 引擎调用的三类插件钩子，*pipeline.Pipeline 实现该接口
type Hooks interface {
	OnAccept(raw pkgif.Channel) (pkgif.Channel, error)
	OnMessage(s pkgif.Session, msg any) bool
	OnStateEvent(s pkgif.Session, status types.StateStatus, err error)
}

// Option 引擎选项
type Option func(*Engine)

// WithDecoder 设置解码器，默认 LineDecoder
func WithDecoder(d pkgif.Decoder) Option {
	return func(e *Engine) { e.decoder = d }
}

// WithProcessor 设置消息处理器，默认 EchoProcessor
func WithProcessor(p pkgif.Processor) Option {
	return func(e *Engine) { e.processor = p }
}

// WithEmitter 设置会话状态事件发射器
func WithEmitter(em pkgif.Emitter) Option {
	return func(e *Engine) { e.emitter = em }
}

// ============================================================================
//                              Engine
// ============================================================================

// Engine TCP 服务引擎
type Engine struct {
	cfg       Config
	hooks     Hooks
	decoder   pkgif.Decoder
	processor pkgif.Processor
	emitter   pkgif.Emitter

	mu       sync.Mutex
	listener net.Listener
	sessions map[string]*session

	closed atomic.Bool
	wg     sync.WaitGroup

	accepted         atomic.Int64
	acceptRejected   atomic.Int64
	messagesRejected atomic.Int64
}

var _ pkgif.StatsProvider = (*Engine)(nil)

// New 创建引擎
func New(cfg Config, hooks Hooks, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		hooks:     hooks,
		decoder:   LineDecoder{MaxLength: cfg.MaxLineLength},
		processor: EchoProcessor{},
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 监听配置地址并开始接受连接
func (e *Engine) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", e.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return e.Serve(ln)
}

// Serve 在给定监听器上接受连接
func (e *Engine) Serve(ln net.Listener) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	e.mu.Lock()
	if e.listener != nil {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.listener = ln
	e.mu.Unlock()

	log.Info("engine listening", "addr", ln.Addr().String())

	e.wg.Add(1)
	go e.acceptLoop(ln)
	return nil
}

// Addr 返回监听地址，未启动时为 nil
func (e *Engine) Addr() net.Addr {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

// Stop 停止接受连接，立即关闭全部会话并等待接入 goroutine 退出
func (e *Engine) Stop(ctx context.Context) error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	e.mu.Lock()
	ln := e.listener
	sessions := make([]*session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()

	var err error
	if ln != nil {
		err = multierr.Append(err, ln.Close())
	}
	for _, s := range sessions {
		_ = s.Close(true)
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = multierr.Append(err, ctx.Err())
	}

	if e.emitter != nil {
		err = multierr.Append(err, e.emitter.Close())
	}
	log.Info("engine stopped", "sessions_closed", len(sessions))
	return err
}

// ============================================================================
//                              接入
// ============================================================================

func (e *Engine) acceptLoop(ln net.Listener) {
	defer e.wg.Done()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if e.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			// 临时错误退避重试
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else if delay < time.Second {
				delay *= 2
			}
			log.Warn("accept failed", "err", err, "retry_in", delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.acceptConn(conn)
		}()
	}
}

// acceptConn 让连接经过接入钩子，通过后建立会话
func (e *Engine) acceptConn(conn net.Conn) {
	raw := channel.NewNetChannel(conn)

	ch, err := e.hooks.OnAccept(raw)
	if err != nil {
		_ = raw.Close()
		status := types.StateAcceptException
		if errors.Is(err, types.ErrRejected) {
			status = types.StateRejectAccept
			e.acceptRejected.Add(1)
			log.Debug("connection rejected", "remote", conn.RemoteAddr().String(), "err", err)
		} else {
			log.Warn("accept failed", "remote", conn.RemoteAddr().String(), "err", err)
		}
		e.publish("", conn.RemoteAddr(), status, err)
		return
	}

	s := newSession(e, uuid.NewString(), ch)
	if !e.addSession(s) {
		_ = ch.Close()
		return
	}
	e.accepted.Add(1)

	s.fire(types.StateNewSession, nil)
	s.read()
}

func (e *Engine) addSession(s *session) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return false
	}
	e.sessions[s.id] = s
	return true
}

func (e *Engine) removeSession(s *session) {
	e.mu.Lock()
	delete(e.sessions, s.id)
	e.mu.Unlock()
}

// ============================================================================
//                              消息与事件
// ============================================================================

func (e *Engine) handleMessage(s *session, msg any) {
	if !e.hooks.OnMessage(s, msg) {
		e.messagesRejected.Add(1)
		return
	}
	if err := e.processor.Process(s, msg); err != nil {
		s.fire(types.StateProcessException, err)
	}
}

func (e *Engine) fire(s *session, status types.StateStatus, err error) {
	e.hooks.OnStateEvent(s, status, err)
	e.publish(s.id, s.RemoteAddr(), status, err)
}

func (e *Engine) publish(id string, remote net.Addr, status types.StateStatus, err error) {
	if e.emitter == nil {
		return
	}
	evt := types.EvtSessionState{
		SessionID: id,
		Status:    status,
		Err:       err,
		Time:      time.Now(),
	}
	if remote != nil {
		evt.RemoteAddr = remote.String()
	}
	if eerr := e.emitter.Emit(evt); eerr != nil {
		log.Debug("emit session event failed", "err", eerr)
	}
}

// Session 按 ID 查找活跃会话
func (e *Engine) Session(id string) (pkgif.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, false
	}
	return s, true
}

// Stats 实现 StatsProvider
func (e *Engine) Stats() types.EngineStats {
	e.mu.Lock()
	active := int64(len(e.sessions))
	e.mu.Unlock()
	return types.EngineStats{
		ActiveSessions:   active,
		Accepted:         e.accepted.Load(),
		AcceptRejected:   e.acceptRejected.Load(),
		MessagesRejected: e.messagesRejected.Load(),
	}
}
