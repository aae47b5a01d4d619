package channel

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ============================================================================
//                              NetChannel
// ============================================================================

// NetChannel 基于 net.Conn 的异步通道
//
// 每次 Read/Write 在独立 goroutine 中执行阻塞调用，完成后回调 handler。
// handler 从不在调用者 goroutine 中同步执行。
type NetChannel struct {
	conn net.Conn

	reading atomic.Bool
	writing atomic.Bool
	closed  atomic.Bool
	once    sync.Once
}

var _ pkgif.Channel = (*NetChannel)(nil)

// NewNetChannel 包装 net.Conn
func NewNetChannel(conn net.Conn) *NetChannel {
	return &NetChannel{conn: conn}
}

// Read 实现 Channel
func (c *NetChannel) Read(buf *types.Buffer, handler pkgif.CompletionHandler) {
	if c.closed.Load() {
		go handler(0, types.ErrChannelClosed)
		return
	}
	if !c.reading.CompareAndSwap(false, true) {
		go handler(0, ErrReadPending)
		return
	}

	go func() {
		n, err := c.conn.Read(buf.Bytes())
		if n > 0 {
			buf.Advance(n)
		}
		c.reading.Store(false)
		handler(n, err)
	}()
}

// Write 实现 Channel
func (c *NetChannel) Write(buf *types.Buffer, handler pkgif.CompletionHandler) {
	if c.closed.Load() {
		go handler(0, types.ErrChannelClosed)
		return
	}
	if !c.writing.CompareAndSwap(false, true) {
		go handler(0, ErrWritePending)
		return
	}

	go func() {
		n, err := c.conn.Write(buf.Bytes())
		if n > 0 {
			buf.Advance(n)
		}
		c.writing.Store(false)
		handler(n, err)
	}()
}

// LocalAddr 实现 Channel
func (c *NetChannel) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// RemoteAddr 实现 Channel
func (c *NetChannel) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// IsOpen 实现 Channel
func (c *NetChannel) IsOpen() bool { return !c.closed.Load() }

// Close 实现 Channel
func (c *NetChannel) Close() error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		err = c.conn.Close()
	})
	return err
}

// NetConn 返回底层连接
func (c *NetChannel) NetConn() net.Conn { return c.conn }

// SetDeadline 设置底层连接读写截止时间
func (c *NetChannel) SetDeadline(t time.Time) error { return c.conn.SetDeadline(t) }

// SetReadDeadline 设置底层连接读截止时间
func (c *NetChannel) SetReadDeadline(t time.Time) error { return c.conn.SetReadDeadline(t) }

// SetWriteDeadline 设置底层连接写截止时间
func (c *NetChannel) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
