//go:build !unix

package sockopt

import (
	"net"

	"github.com/dep2p/go-netplug/pkg/types"
)

// apply 在非 unix 平台上退化为 net.TCPConn 提供的设置
func apply(conn net.Conn, opt types.SocketOption, value int) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return unsupported("%T is not a TCP connection", conn)
	}
	switch opt {
	case types.TCPNoDelay:
		return tc.SetNoDelay(value != 0)
	case types.SoKeepAlive:
		return tc.SetKeepAlive(value != 0)
	case types.SoRcvBuf:
		return tc.SetReadBuffer(value)
	case types.SoSndBuf:
		return tc.SetWriteBuffer(value)
	case types.SoLinger:
		return tc.SetLinger(value)
	}
	return unsupported("option %s on this platform", opt)
}
