package pipeline

import (
	"net"
	"sync"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

// StubSession 内存会话（测试用）
type StubSession struct {
	SessionID string
	Local     net.Addr
	Remote    net.Addr

	mu       sync.Mutex
	valid    bool
	written  [][]byte
	closes   []bool
	onClose  func(immediate bool)
	writeErr error
}

var _ pkgif.Session = (*StubSession)(nil)

// NewStubSession 创建有效的内存会话
func NewStubSession(id string) *StubSession {
	return &StubSession{
		SessionID: id,
		Local:     &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000},
		Remote:    &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 40000},
		valid:     true,
	}
}

// ID 实现 Session
func (s *StubSession) ID() string { return s.SessionID }

// LocalAddr 实现 Session
func (s *StubSession) LocalAddr() net.Addr { return s.Local }

// RemoteAddr 实现 Session
func (s *StubSession) RemoteAddr() net.Addr { return s.Remote }

// Write 实现 Session
func (s *StubSession) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid {
		return types.ErrSessionClosed
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	s.written = append(s.written, append([]byte(nil), p...))
	return nil
}

// Close 实现 Session
func (s *StubSession) Close(immediate bool) error {
	s.mu.Lock()
	s.closes = append(s.closes, immediate)
	s.valid = false
	cb := s.onClose
	s.mu.Unlock()
	if cb != nil {
		cb(immediate)
	}
	return nil
}

// IsValid 实现 Session
func (s *StubSession) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valid
}

// Invalidate 使会话失效而不记录关闭
func (s *StubSession) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}

// OnClose 设置关闭回调
func (s *StubSession) OnClose(fn func(immediate bool)) {
	s.mu.Lock()
	s.onClose = fn
	s.mu.Unlock()
}

// FailWrites 之后的写操作返回 err
func (s *StubSession) FailWrites(err error) {
	s.mu.Lock()
	s.writeErr = err
	s.mu.Unlock()
}

// Written 返回已写出的消息
func (s *StubSession) Written() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.written...)
}

// Closes 返回每次 Close 的 immediate 参数
func (s *StubSession) Closes() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.closes...)
}
