package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-netplug/pkg/types"
)

// ============================================================================
//                              Exporter - Prometheus 导出
// ============================================================================

// Exporter 把快照转换为 Prometheus 指标
//
// 周期计数累加到 Counter，速率与在线数写入 Gauge。
// 指标注册在独立的 Registry 上，不污染全局默认 Registry。
type Exporter struct {
	registry *prometheus.Registry

	inflow      prometheus.Counter
	outflow     prometheus.Counter
	reads       prometheus.Counter
	writes      prometheus.Counter
	processed   prometheus.Counter
	failures    prometheus.Counter
	connects    prometheus.Counter
	disconnects prometheus.Counter

	online      prometheus.Gauge
	inflowRate  prometheus.Gauge
	outflowRate prometheus.Gauge
	messageRate prometheus.Gauge

	engine *prometheus.GaugeVec
}

// NewExporter 创建导出器
func NewExporter(namespace string) *Exporter {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	e := &Exporter{
		registry: prometheus.NewRegistry(),

		inflow:      counter("inflow_bytes_total", "Bytes read from all channels."),
		outflow:     counter("outflow_bytes_total", "Bytes written to all channels."),
		reads:       counter("reads_total", "Completed channel reads."),
		writes:      counter("writes_total", "Completed channel writes."),
		processed:   counter("messages_processed_total", "Inbound messages seen by the pipeline."),
		failures:    counter("process_failures_total", "Message processing exceptions."),
		connects:    counter("connections_total", "Sessions opened."),
		disconnects: counter("disconnections_total", "Sessions closed."),

		online:      gauge("online_sessions", "Sessions currently open."),
		inflowRate:  gauge("inflow_rate_bytes", "Inbound bytes per second over the last snapshot interval."),
		outflowRate: gauge("outflow_rate_bytes", "Outbound bytes per second over the last snapshot interval."),
		messageRate: gauge("message_rate", "Messages per second over the last snapshot interval."),

		engine: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "engine_stat",
			Help:      "Read-only engine statistics.",
		}, []string{"stat"}),
	}

	e.registry.MustRegister(
		e.inflow, e.outflow, e.reads, e.writes,
		e.processed, e.failures, e.connects, e.disconnects,
		e.online, e.inflowRate, e.outflowRate, e.messageRate,
		e.engine,
	)
	return e
}

// Publish 实现 Sink
func (e *Exporter) Publish(s *types.TrafficSnapshot) {
	e.inflow.Add(float64(s.InflowBytes))
	e.outflow.Add(float64(s.OutflowBytes))
	e.reads.Add(float64(s.ReadCount))
	e.writes.Add(float64(s.WriteCount))
	e.processed.Add(float64(s.ProcessedMessages))
	e.failures.Add(float64(s.ProcessFailures))
	e.connects.Add(float64(s.NewConnections))
	e.disconnects.Add(float64(s.Disconnections))

	e.online.Set(float64(s.Online))
	e.inflowRate.Set(s.InflowRate)
	e.outflowRate.Set(s.OutflowRate)
	e.messageRate.Set(s.MessageRate)

	if s.Engine != nil {
		e.engine.WithLabelValues("active_sessions").Set(float64(s.Engine.ActiveSessions))
		e.engine.WithLabelValues("accepted").Set(float64(s.Engine.Accepted))
		e.engine.WithLabelValues("accept_rejected").Set(float64(s.Engine.AcceptRejected))
		e.engine.WithLabelValues("messages_rejected").Set(float64(s.Engine.MessagesRejected))
	}
}

// Registry 返回指标注册表
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Handler 返回 /metrics 处理器
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{Registry: e.registry})
}
