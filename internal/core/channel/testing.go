package channel

import (
	"bytes"
	"io"
	"net"
	"net/netip"
	"sync"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

// Fake 在调用者 goroutine 中同步完成的可编程通道（测试用）
//
// 未设置数据源时读操作总是填满缓冲区。
type Fake struct {
	mu sync.Mutex

	local, remote net.Addr

	source    []byte
	hasSource bool
	readErr   error
	maxPerOp  int

	written bytes.Buffer
	reads   int
	writes  int
	closed  bool
}

var _ pkgif.Channel = (*Fake)(nil)

// NewFake 创建远端地址为 remote（host:port）的 Fake
func NewFake(remote string) *Fake {
	return &Fake{
		local:  net.TCPAddrFromAddrPort(netip.MustParseAddrPort("127.0.0.1:9000")),
		remote: net.TCPAddrFromAddrPort(netip.MustParseAddrPort(remote)),
	}
}

// WithSource 设置读数据源，读尽后返回 io.EOF
func (f *Fake) WithSource(data []byte) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.source = append([]byte(nil), data...)
	f.hasSource = true
	return f
}

// WithReadError 之后的读操作均以 err 完成
func (f *Fake) WithReadError(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
	return f
}

// WithMaxPerOp 限制单次操作最多传输的字节数
func (f *Fake) WithMaxPerOp(n int) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxPerOp = n
	return f
}

func (f *Fake) clip(n int) int {
	if f.maxPerOp > 0 && n > f.maxPerOp {
		return f.maxPerOp
	}
	return n
}

// Read 实现 Channel
func (f *Fake) Read(buf *types.Buffer, handler pkgif.CompletionHandler) {
	f.mu.Lock()
	f.reads++
	if f.closed {
		f.mu.Unlock()
		handler(0, types.ErrChannelClosed)
		return
	}
	if f.readErr != nil {
		err := f.readErr
		f.mu.Unlock()
		handler(0, err)
		return
	}

	n := f.clip(buf.Remaining())
	dst := buf.Bytes()[:n]
	if f.hasSource {
		if len(f.source) == 0 && n > 0 {
			f.mu.Unlock()
			handler(0, io.EOF)
			return
		}
		n = copy(dst, f.source)
		f.source = f.source[n:]
	} else {
		for i := range dst {
			dst[i] = 'x'
		}
	}
	f.mu.Unlock()

	buf.Advance(n)
	handler(n, nil)
}

// Write 实现 Channel
func (f *Fake) Write(buf *types.Buffer, handler pkgif.CompletionHandler) {
	f.mu.Lock()
	f.writes++
	if f.closed {
		f.mu.Unlock()
		handler(0, types.ErrChannelClosed)
		return
	}
	n := f.clip(buf.Remaining())
	f.written.Write(buf.Bytes()[:n])
	f.mu.Unlock()

	buf.Advance(n)
	handler(n, nil)
}

// LocalAddr 实现 Channel
func (f *Fake) LocalAddr() net.Addr { return f.local }

// RemoteAddr 实现 Channel
func (f *Fake) RemoteAddr() net.Addr { return f.remote }

// IsOpen 实现 Channel
func (f *Fake) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

// Close 实现 Channel
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Written 返回已写出的全部数据
func (f *Fake) Written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.written.Bytes()...)
}

// Calls 返回 (读次数, 写次数)
func (f *Fake) Calls() (reads, writes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads, f.writes
}
