// Package interfaces 定义 netplug 公共接口
//
// 本文件定义 Plugin 接口。
package interfaces

import "github.com/dep2p/go-netplug/pkg/types"

// Plugin 拦截插件
//
// 引擎通过流水线按注册顺序调用插件的三类钩子。
type Plugin interface {
	// Name 插件名称
	Name() string

	// OnAccept 接入拦截
	//
	// 返回原通道表示放行，返回装饰后的通道供后续插件继续包装，
	// 返回错误（包装 types.ErrRejected）表示拒绝。
	OnAccept(ch Channel) (Channel, error)

	// OnMessage 消息预处理，返回 false 则消息不再交给后续插件和处理器
	OnMessage(s Session, msg any) bool

	// OnStateEvent 会话状态通知
	OnStateEvent(s Session, status types.StateStatus, err error)
}
