package types

import "time"

// ============================================================================
//                              EngineStats - 引擎统计
// ============================================================================

// EngineStats 引擎只读统计
type EngineStats struct {
	// ActiveSessions 当前活跃会话数
	ActiveSessions int64

	// Accepted 接入成功的连接总数
	Accepted int64

	// AcceptRejected 被插件拒绝的接入总数
	AcceptRejected int64

	// MessagesRejected 被插件拒绝的消息总数
	MessagesRejected int64
}

// ============================================================================
//                              TrafficSnapshot - 流量快照
// ============================================================================

// TrafficSnapshot 一个统计周期内的流量快照
//
// 周期计数在每次快照后清零；Total* 为累计值，永不清零。
type TrafficSnapshot struct {
	// Time 快照时间
	Time time.Time

	// Interval 统计周期
	Interval time.Duration

	InflowBytes  int64
	OutflowBytes int64
	ReadCount    int64
	WriteCount   int64

	ProcessedMessages int64
	ProcessFailures   int64

	NewConnections int64
	Disconnections int64

	// Online 当前在线连接数
	Online int64

	TotalConnections int64
	TotalProcessed   int64

	// InflowRate 入站速率（字节/秒）
	InflowRate float64
	// OutflowRate 出站速率（字节/秒）
	OutflowRate float64
	// MessageRate 处理速率（消息/秒）
	MessageRate float64

	// Engine 引擎统计（未配置统计源时为 nil）
	Engine *EngineStats
}
