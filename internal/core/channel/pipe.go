package channel

import "net"

// Pipe 返回一对内存中相互连接的通道
func Pipe() (*NetChannel, *NetChannel) {
	a, b := net.Pipe()
	return NewNetChannel(a), NewNetChannel(b)
}
