// Package eventbus 实现进程内事件总线
//
// 引擎通过总线发布会话状态事件（types.EvtSessionState），
// 流量监控插件发布快照事件（types.EvtTrafficSnapshot）。
//
//	bus := eventbus.NewBus()
//	sub, _ := bus.Subscribe(new(types.EvtSessionState), eventbus.BufSize(64))
//	defer sub.Close()
//
//	for evt := range sub.Out() {
//	    e := evt.(types.EvtSessionState)
//	    ...
//	}
//
// 发射从不阻塞，订阅者跟不上时事件被丢弃并节流告警。
package eventbus
