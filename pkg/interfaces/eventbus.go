// Package interfaces 定义 netplug 公共接口
//
// 本文件定义 EventBus 接口。会话状态事件与流量快照通过事件总线对外发布。
package interfaces

// EventBus 事件总线
//
// 事件类型以指针零值标识，例如 new(types.EvtSessionState)。
type EventBus interface {
	Subscribe(eventType any, opts ...SubscriptionOpt) (Subscription, error)
	Emitter(eventType any, opts ...EmitterOpt) (Emitter, error)
}

// Subscription 事件订阅
type Subscription interface {
	// Out 事件通道，订阅关闭后通道被关闭
	Out() <-chan any
	Close() error
}

// Emitter 事件发射器
//
// Emit 从不阻塞：订阅者缓冲区满时事件被丢弃。
type Emitter interface {
	Emit(event any) error
	Close() error
}

// SubscriptionOpt 订阅选项
type SubscriptionOpt func(*SubscriptionSettings)

// EmitterOpt 发射器选项
type EmitterOpt func(*EmitterSettings)

// SubscriptionSettings 订阅设置
type SubscriptionSettings struct {
	Buffer int
}

// EmitterSettings 发射器设置
type EmitterSettings struct {
	// Stateful 保留最后一个事件，新订阅者立即收到
	Stateful bool
}

// BufSize 订阅缓冲区大小
func BufSize(size int) SubscriptionOpt {
	return func(s *SubscriptionSettings) { s.Buffer = size }
}

// Stateful 有状态发射器
func Stateful() EmitterOpt {
	return func(s *EmitterSettings) { s.Stateful = true }
}
