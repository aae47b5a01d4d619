package types

import "time"

// ============================================================================
//                              事件总线事件
// ============================================================================

// EvtSessionState 会话状态变化事件
type EvtSessionState struct {
	SessionID  string
	RemoteAddr string
	Status     StateStatus
	// Err 异常类状态携带的错误，可能为 nil
	Err  error
	Time time.Time
}

// EvtTrafficSnapshot 流量快照事件
type EvtTrafficSnapshot struct {
	Snapshot TrafficSnapshot
}
