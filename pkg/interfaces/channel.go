// Package interfaces 定义 netplug 公共接口
//
// 本文件定义 Channel 接口，即基于完成回调的异步字节通道。
package interfaces

import (
	"net"

	"github.com/dep2p/go-netplug/pkg/types"
)

// CompletionHandler 异步 I/O 完成回调
//
// n 为本次实际传输的字节数。读到流结束时 err 为 io.EOF。
type CompletionHandler func(n int, err error)

// Channel 异步字节通道
//
// Read/Write 立即返回，完成后在 I/O goroutine 上调用 handler；
// 完成时缓冲区 position 已前移 n。每个方向同一时刻最多一个未完成操作。
type Channel interface {
	// Read 从通道读入 buf 的 [position, limit) 区间
	Read(buf *types.Buffer, handler CompletionHandler)

	// Write 将 buf 的 [position, limit) 区间写入通道
	Write(buf *types.Buffer, handler CompletionHandler)

	// LocalAddr 本地地址
	LocalAddr() net.Addr

	// RemoteAddr 远端地址
	RemoteAddr() net.Addr

	// IsOpen 通道是否仍然打开
	IsOpen() bool

	// Close 关闭通道，未完成的操作以错误完成
	Close() error
}

// ChannelTransform 通道变换
//
// 返回装饰后的通道，或返回错误表示拒绝该连接。
type ChannelTransform func(Channel) (Channel, error)
