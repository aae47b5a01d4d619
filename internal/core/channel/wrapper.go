package channel

import (
	"net"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// Wrapper 通道装饰器基类
//
// 嵌入 Wrapper 的装饰器默认将全部方法转发给内层通道。
type Wrapper struct {
	pkgif.Channel
}

// Wrap 创建装饰器基类
func Wrap(inner pkgif.Channel) Wrapper {
	return Wrapper{Channel: inner}
}

// Unwrap 返回内层通道
func (w *Wrapper) Unwrap() pkgif.Channel { return w.Channel }

type unwrapper interface {
	Unwrap() pkgif.Channel
}

// Find 沿装饰链由外向内查找第一个实现 T 的通道
func Find[T any](ch pkgif.Channel) (T, bool) {
	for ch != nil {
		if v, ok := ch.(T); ok {
			return v, true
		}
		u, ok := ch.(unwrapper)
		if !ok {
			break
		}
		ch = u.Unwrap()
	}
	var zero T
	return zero, false
}

// NetConnOf 返回装饰链上最外层可用的 net.Conn
func NetConnOf(ch pkgif.Channel) (net.Conn, bool) {
	nc, ok := Find[interface{ NetConn() net.Conn }](ch)
	if !ok {
		return nil, false
	}
	return nc.NetConn(), true
}
