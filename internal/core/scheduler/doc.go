// Package scheduler 实现插件共享的定时任务调度器
//
// 心跳检查、限速重试与流量快照都通过同一个调度器执行。
// 任务由时钟触发后交给有界工作池运行，不占用 I/O goroutine。
//
// Manual 是确定性的调度器实现，由测试显式推进时间。
package scheduler
