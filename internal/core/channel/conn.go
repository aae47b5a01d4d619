package channel

import (
	"net"
	"sync"
	"time"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ============================================================================
//                              Conn - 阻塞视图
// ============================================================================

// Conn 将异步 Channel 适配为阻塞式 net.Conn
//
// 每次 Read/Write 提交一次异步操作并等待其完成。
// 装饰器可能丢弃已提交的操作而不回调，因此 Close 会唤醒所有等待者。
type Conn struct {
	ch pkgif.Channel

	closeOnce sync.Once
	closed    chan struct{}
}

var _ net.Conn = (*Conn)(nil)

// NewConn 创建阻塞视图
func NewConn(ch pkgif.Channel) *Conn {
	return &Conn{ch: ch, closed: make(chan struct{})}
}

type ioResult struct {
	n   int
	err error
}

func (c *Conn) await(submit func(*types.Buffer, pkgif.CompletionHandler), p []byte) (int, error) {
	select {
	case <-c.closed:
		return 0, net.ErrClosed
	default:
	}

	done := make(chan ioResult, 1)
	submit(types.WrapBuffer(p), func(n int, err error) {
		done <- ioResult{n, err}
	})
	select {
	case r := <-done:
		return r.n, r.err
	case <-c.closed:
		return 0, net.ErrClosed
	}
}

// Read 实现 net.Conn
func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return c.await(c.ch.Read, p)
}

// Write 实现 net.Conn，写满 p 或出错才返回
func (c *Conn) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := c.await(c.ch.Write, p[written:])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Close 关闭底层通道并唤醒阻塞中的 Read/Write
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.ch.Close()
}

// LocalAddr 实现 net.Conn
func (c *Conn) LocalAddr() net.Addr { return c.ch.LocalAddr() }

// RemoteAddr 实现 net.Conn
func (c *Conn) RemoteAddr() net.Addr { return c.ch.RemoteAddr() }

// Channel 返回被适配的通道
func (c *Conn) Channel() pkgif.Channel { return c.ch }

type deadliner interface {
	SetDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// SetDeadline 转发给装饰链上支持截止时间的通道，没有则忽略
func (c *Conn) SetDeadline(t time.Time) error {
	if d, ok := Find[deadliner](c.ch); ok {
		return d.SetDeadline(t)
	}
	return nil
}

// SetReadDeadline 同 SetDeadline
func (c *Conn) SetReadDeadline(t time.Time) error {
	if d, ok := Find[deadliner](c.ch); ok {
		return d.SetReadDeadline(t)
	}
	return nil
}

// SetWriteDeadline 同 SetDeadline
func (c *Conn) SetWriteDeadline(t time.Time) error {
	if d, ok := Find[deadliner](c.ch); ok {
		return d.SetWriteDeadline(t)
	}
	return nil
}
