// Package types 定义 netplug 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

var (
	// ErrRejected 插件拒绝（接入或消息）
	//
	// 拒绝属于控制流而非故障，插件返回的拒绝错误应包装该错误。
	ErrRejected = errors.New("rejected by plugin")

	// ErrChannelClosed 通道已关闭
	ErrChannelClosed = errors.New("channel closed")

	// ErrSessionClosed 会话已关闭
	ErrSessionClosed = errors.New("session closed")
)
