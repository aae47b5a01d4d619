//go:build unix

package sockopt

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/dep2p/go-netplug/pkg/types"
)

// apply 通过 setsockopt 设置单个选项
func apply(conn net.Conn, opt types.SocketOption, value int) error {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return unsupported("%T has no raw socket", conn)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return err
	}

	var opErr error
	err = rc.Control(func(fd uintptr) {
		opErr = setsockopt(int(fd), opt, value)
	})
	if err != nil {
		return err
	}
	return opErr
}

func setsockopt(fd int, opt types.SocketOption, value int) error {
	switch opt {
	case types.TCPNoDelay:
		return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, boolInt(value))
	case types.SoKeepAlive:
		return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, boolInt(value))
	case types.SoReuseAddr:
		return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolInt(value))
	case types.SoRcvBuf:
		return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, value)
	case types.SoSndBuf:
		return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, value)
	case types.SoLinger:
		l := &unix.Linger{}
		if value >= 0 {
			l.Onoff, l.Linger = 1, int32(value)
		}
		return unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, l)
	}
	return unsupported("option %s", opt)
}

func boolInt(v int) int {
	if v != 0 {
		return 1
	}
	return 0
}
