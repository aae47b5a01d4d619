package tls

import (
	"crypto/tls"

	"github.com/dep2p/go-netplug/internal/core/channel"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// secureChannel 握手完成后的明文通道
//
// 读写在 tls.Conn 上进行，tls.Conn 通过 channel.Conn 使用内层异步通道。
type secureChannel struct {
	*channel.NetChannel
	conn  *tls.Conn
	inner pkgif.Channel
}

var _ pkgif.Channel = (*secureChannel)(nil)

func newSecureChannel(conn *tls.Conn, inner pkgif.Channel) *secureChannel {
	return &secureChannel{
		NetChannel: channel.NewNetChannel(conn),
		conn:       conn,
		inner:      inner,
	}
}

// Unwrap 返回握手前的通道
func (c *secureChannel) Unwrap() pkgif.Channel { return c.inner }

// ConnectionState 返回 TLS 连接状态
func (c *secureChannel) ConnectionState() tls.ConnectionState {
	return c.conn.ConnectionState()
}

// StateOf 沿装饰链查找 TLS 连接状态
func StateOf(ch pkgif.Channel) (tls.ConnectionState, bool) {
	sc, ok := channel.Find[*secureChannel](ch)
	if !ok {
		return tls.ConnectionState{}, false
	}
	return sc.ConnectionState(), true
}
