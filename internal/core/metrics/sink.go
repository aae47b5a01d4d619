package metrics

import (
	"fmt"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ============================================================================
//                              LogSink
// ============================================================================

// LogSink 以结构化日志输出快照
type LogSink struct{}

// Publish 实现 Sink
func (LogSink) Publish(s *types.TrafficSnapshot) {
	args := []any{
		"interval", s.Interval,
		"online", s.Online,
		"connects", s.NewConnections,
		"disconnects", s.Disconnections,
		"inflow", s.InflowBytes,
		"outflow", s.OutflowBytes,
		"inflowRate", formatRate(s.InflowRate),
		"outflowRate", formatRate(s.OutflowRate),
		"reads", s.ReadCount,
		"writes", s.WriteCount,
		"processed", s.ProcessedMessages,
		"failures", s.ProcessFailures,
		"msgRate", fmt.Sprintf("%.2f/s", s.MessageRate),
		"totalConnections", s.TotalConnections,
		"totalProcessed", s.TotalProcessed,
	}
	if s.Engine != nil {
		args = append(args,
			"activeSessions", s.Engine.ActiveSessions,
			"acceptRejected", s.Engine.AcceptRejected,
			"messagesRejected", s.Engine.MessagesRejected)
	}
	log.Info("traffic snapshot", args...)
}

// formatRate 格式化速率
func formatRate(bps float64) string {
	switch {
	case bps < 1024:
		return fmt.Sprintf("%.2f B/s", bps)
	case bps < 1024*1024:
		return fmt.Sprintf("%.2f KB/s", bps/1024)
	default:
		return fmt.Sprintf("%.2f MB/s", bps/1024/1024)
	}
}

// ============================================================================
//                              EventSink
// ============================================================================

// EventSink 把快照发布到事件总线
type EventSink struct {
	em pkgif.Emitter
}

// NewEventSink 创建有状态的快照发射器，新订阅者立即收到最近一次快照
func NewEventSink(bus pkgif.EventBus) (*EventSink, error) {
	em, err := bus.Emitter(new(types.EvtTrafficSnapshot), pkgif.Stateful())
	if err != nil {
		return nil, err
	}
	return &EventSink{em: em}, nil
}

// Publish 实现 Sink
func (e *EventSink) Publish(s *types.TrafficSnapshot) {
	if err := e.em.Emit(types.EvtTrafficSnapshot{Snapshot: *s}); err != nil {
		log.Debug("emit traffic snapshot failed", "err", err)
	}
}

// Close 关闭发射器
func (e *EventSink) Close() error { return e.em.Close() }
