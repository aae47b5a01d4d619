// Package interfaces 定义 netplug 的公共接口
//
// 文件组织：
//   - channel.go    - Channel 异步字节通道、ChannelTransform
//   - session.go    - Session 会话
//   - plugin.go     - Plugin 拦截插件
//   - scheduler.go  - Scheduler 共享调度器
//   - engine.go     - Decoder, Processor, StatsProvider
//   - eventbus.go   - EventBus 事件总线
package interfaces
