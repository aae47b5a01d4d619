package engine

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ============================================================================
//                              session
// ============================================================================

// session 引擎会话
//
// 读循环由读完成回调驱动，同一会话的消息顺序处理。
// 写请求进入有界队列，同一时刻只有一个写操作在途。
type session struct {
	id string
	e  *Engine
	ch pkgif.Channel

	readBuf *types.Buffer

	mu      sync.Mutex
	queue   [][]byte
	writing bool
	closing bool
	closed  bool

	valid     atomic.Bool
	closeOnce sync.Once

	// 状态事件邮箱：同一时刻只有一个 goroutine 投递，SESSION_CLOSED 入队后拒绝后续事件
	evMu         sync.Mutex
	events       []stateEvent
	dispatching  bool
	closedQueued bool
}

type stateEvent struct {
	status types.StateStatus
	err    error
}

var _ pkgif.Session = (*session)(nil)

func newSession(e *Engine, id string, ch pkgif.Channel) *session {
	s := &session{
		id:      id,
		e:       e,
		ch:      ch,
		readBuf: types.NewBuffer(e.cfg.ReadBufferSize),
	}
	s.valid.Store(true)
	return s
}

// ID 实现 Session
func (s *session) ID() string { return s.id }

// LocalAddr 实现 Session
func (s *session) LocalAddr() net.Addr { return s.ch.LocalAddr() }

// RemoteAddr 实现 Session
func (s *session) RemoteAddr() net.Addr { return s.ch.RemoteAddr() }

// IsValid 实现 Session
func (s *session) IsValid() bool { return s.valid.Load() }

// ============================================================================
//                              读
// ============================================================================

func (s *session) read() {
	s.ch.Read(s.readBuf, s.onRead)
}

func (s *session) onRead(n int, err error) {
	if s.isClosed() {
		return
	}

	if n > 0 {
		if !s.drain() {
			return
		}
	}

	switch {
	case errors.Is(err, io.EOF):
		s.fire(types.StateInputShutdown, nil)
		_ = s.Close(false)
		return
	case err != nil:
		s.fire(types.StateInputException, err)
		_ = s.Close(true)
		return
	}

	if s.IsValid() {
		s.read()
	}
}

// drain 解码缓冲区内的全部完整消息，返回是否继续读
func (s *session) drain() bool {
	buf := s.readBuf
	buf.Flip()
	defer buf.Compact()

	for buf.HasRemaining() && s.IsValid() {
		msg, err := s.e.decoder.Decode(buf, s)
		if err != nil {
			s.fire(types.StateDecodeException, err)
			_ = s.Close(true)
			return false
		}
		if msg == nil {
			break
		}
		s.e.handleMessage(s, msg)
	}
	return true
}

// ============================================================================
//                              写
// ============================================================================

// Write 实现 Session，p 被复制后排队
func (s *session) Write(p []byte) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return types.ErrSessionClosed
	}
	if len(s.queue) >= s.e.cfg.WriteQueueSize {
		s.mu.Unlock()
		return ErrWriteQueueFull
	}
	s.queue = append(s.queue, append([]byte(nil), p...))
	start := !s.writing
	s.writing = true
	s.mu.Unlock()

	if start {
		s.writeNext()
	}
	return nil
}

func (s *session) writeNext() {
	s.mu.Lock()
	if s.closed || len(s.queue) == 0 {
		s.writing = false
		drained := s.closing && !s.closed
		s.mu.Unlock()
		if drained {
			s.finish()
		}
		return
	}
	buf := types.WrapBuffer(s.queue[0])
	s.mu.Unlock()

	s.writeBuf(buf)
}

func (s *session) writeBuf(buf *types.Buffer) {
	s.ch.Write(buf, func(_ int, err error) {
		if err != nil {
			if !s.isClosed() {
				s.fire(types.StateOutputException, err)
			}
			_ = s.Close(true)
			return
		}
		if buf.HasRemaining() {
			s.writeBuf(buf)
			return
		}

		s.mu.Lock()
		if len(s.queue) > 0 {
			s.queue = s.queue[1:]
		}
		s.mu.Unlock()
		s.writeNext()
	})
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 实现 Session
func (s *session) Close(immediate bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	first := !s.closing
	s.closing = true
	idle := !s.writing
	s.mu.Unlock()

	s.valid.Store(false)

	if immediate || idle {
		s.finish()
		return nil
	}
	if first {
		s.fire(types.StateSessionClosing, nil)
	}
	return nil
}

// finish 关闭通道并投递 SESSION_CLOSED，只执行一次
func (s *session) finish() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closing = true
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		s.valid.Store(false)

		if err := s.ch.Close(); err != nil {
			log.Debug("close channel", "session", s.id, "err", err)
		}
		s.e.removeSession(s)
		s.fire(types.StateSessionClosed, nil)
	})
}

func (s *session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fire 投递状态事件；SESSION_CLOSED 之后不再投递任何事件
//
// 其他 goroutine 正在投递时事件只入队，由正在投递的 goroutine 按序送达；
// 插件在事件回调中触发的事件同样排在当前事件之后。
func (s *session) fire(status types.StateStatus, err error) {
	s.evMu.Lock()
	if s.closedQueued {
		s.evMu.Unlock()
		return
	}
	if status == types.StateSessionClosed {
		s.closedQueued = true
	}
	s.events = append(s.events, stateEvent{status, err})
	if s.dispatching {
		s.evMu.Unlock()
		return
	}
	s.dispatching = true

	for len(s.events) > 0 {
		ev := s.events[0]
		s.events = s.events[1:]
		s.evMu.Unlock()
		s.e.fire(s, ev.status, ev.err)
		s.evMu.Lock()
	}
	s.dispatching = false
	s.evMu.Unlock()
}
