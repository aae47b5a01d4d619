// Package interfaces 定义 netplug 公共接口
//
// 本文件定义 Session 接口。
package interfaces

import "net"

// Session 已建立连接的会话
//
// 会话标识由引擎分配，插件以 ID() 作为其按会话状态的键。
type Session interface {
	// ID 会话唯一标识
	ID() string

	// LocalAddr 本地地址
	LocalAddr() net.Addr

	// RemoteAddr 远端地址
	RemoteAddr() net.Addr

	// Write 排队发送并触发刷出
	Write(p []byte) error

	// Close 关闭会话
	//
	// immediate 为 true 时丢弃未发送数据立即关闭，否则先刷出待发送数据。
	Close(immediate bool) error

	// IsValid 会话是否仍然有效
	IsValid() bool
}
