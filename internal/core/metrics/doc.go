// Package metrics 实现流量监控插件
//
// Monitor 以无锁原子计数累积以下周期指标：
//   - 读写字节数与读写完成次数（通过计数装饰器）
//   - 处理的消息数与处理异常数（消息钩子与 PROCESS_EXCEPTION 事件）
//   - 新建连接数与断开连接数（NEW_SESSION / SESSION_CLOSED 事件）
//
// 共享调度器按固定周期读取并清零周期计数，计算速率，累加永不清零的
// 总连接数与总处理数，生成 types.TrafficSnapshot 并交给各个 Sink：
//
//   - LogSink：结构化日志
//   - Exporter：Prometheus 指标（独立 Registry，可挂到 /metrics）
//   - EventSink：发布 types.EvtTrafficSnapshot 到事件总线
//
// 配置了引擎统计源（pkgif.StatsProvider）时，快照附带引擎只读统计。
package metrics
