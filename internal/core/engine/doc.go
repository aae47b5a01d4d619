// Package engine 实现驱动插件流水线的 TCP 服务引擎
//
// 每个入站连接在独立 goroutine 中经过流水线接入钩子，通过后成为会话：
//
//	accept -> Pipeline.OnAccept -> NEW_SESSION -> 读循环
//	读完成 -> Decoder -> Pipeline.OnMessage -> Processor
//	Close(false) -> SESSION_CLOSING -> 刷出待发送数据 -> SESSION_CLOSED
//	Close(true)  -> SESSION_CLOSED
//
// 被拒绝的接入不会成为会话，只在事件总线上发布 REJECT_ACCEPT / ACCEPT_EXCEPTION。
// 引擎通过 Stats 暴露只读统计，不需要插件窥探内部状态。
package engine
