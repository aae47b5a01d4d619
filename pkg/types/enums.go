// Package types 定义 netplug 公共类型
//
// 本文件定义枚举类型。
package types

import "fmt"

// ============================================================================
//                              StateStatus - 会话生命周期状态
// ============================================================================

// StateStatus 会话生命周期状态
//
// 同一会话的每次状态转换只投递一次；StateNewSession 先于其他任何状态，
// StateSessionClosed 为终态。
type StateStatus int

const (
	// StateNewSession 会话建立
	StateNewSession StateStatus = iota
	// StateInputShutdown 对端关闭输入流
	StateInputShutdown
	// StateProcessException 消息处理异常
	StateProcessException
	// StateDecodeException 解码异常
	StateDecodeException
	// StateInputException 读异常
	StateInputException
	// StateOutputException 写异常
	StateOutputException
	// StateSessionClosing 会话关闭中（待发送数据仍在刷出）
	StateSessionClosing
	// StateSessionClosed 会话已关闭
	StateSessionClosed
	// StateRejectAccept 接入被拒绝
	StateRejectAccept
	// StateAcceptException 接入过程异常
	StateAcceptException
)

var stateNames = [...]string{
	StateNewSession:       "NEW_SESSION",
	StateInputShutdown:    "INPUT_SHUTDOWN",
	StateProcessException: "PROCESS_EXCEPTION",
	StateDecodeException:  "DECODE_EXCEPTION",
	StateInputException:   "INPUT_EXCEPTION",
	StateOutputException:  "OUTPUT_EXCEPTION",
	StateSessionClosing:   "SESSION_CLOSING",
	StateSessionClosed:    "SESSION_CLOSED",
	StateRejectAccept:     "REJECT_ACCEPT",
	StateAcceptException:  "ACCEPT_EXCEPTION",
}

// String 返回状态名称
func (s StateStatus) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("StateStatus(%d)", int(s))
}

// IsException 是否为异常类状态
func (s StateStatus) IsException() bool {
	switch s {
	case StateProcessException, StateDecodeException, StateInputException,
		StateOutputException, StateAcceptException:
		return true
	}
	return false
}

// ============================================================================
//                              IODirection - 读写方向
// ============================================================================

// IODirection 通道 I/O 方向
type IODirection int

const (
	// IORead 读（入站）
	IORead IODirection = iota
	// IOWrite 写（出站）
	IOWrite
)

// String 返回方向名称
func (d IODirection) String() string {
	if d == IOWrite {
		return "write"
	}
	return "read"
}

// ============================================================================
//                              SocketOption - 套接字选项
// ============================================================================

// SocketOption 套接字选项名
type SocketOption string

const (
	// SoRcvBuf 接收缓冲区大小
	SoRcvBuf SocketOption = "SO_RCVBUF"
	// SoSndBuf 发送缓冲区大小
	SoSndBuf SocketOption = "SO_SNDBUF"
	// SoKeepAlive TCP 保活
	SoKeepAlive SocketOption = "SO_KEEPALIVE"
	// SoReuseAddr 地址复用
	SoReuseAddr SocketOption = "SO_REUSEADDR"
	// SoLinger 关闭时逗留秒数（负值关闭该选项）
	SoLinger SocketOption = "SO_LINGER"
	// TCPNoDelay 禁用 Nagle 算法
	TCPNoDelay SocketOption = "TCP_NODELAY"
)

// KnownSocketOptions 支持的全部套接字选项
var KnownSocketOptions = []SocketOption{SoRcvBuf, SoSndBuf, SoKeepAlive, SoReuseAddr, SoLinger, TCPNoDelay}

// Valid 是否为已知选项
func (o SocketOption) Valid() bool {
	for _, k := range KnownSocketOptions {
		if o == k {
			return true
		}
	}
	return false
}
