package metrics

import "sync/atomic"

// counters 周期计数，由 I/O goroutine 并发累加，快照时整体读取并清零
type counters struct {
	inflow      atomic.Int64
	outflow     atomic.Int64
	reads       atomic.Int64
	writes      atomic.Int64
	processed   atomic.Int64
	failures    atomic.Int64
	connects    atomic.Int64
	disconnects atomic.Int64
}

// period 一次读取并清零的结果
type period struct {
	inflow, outflow       int64
	reads, writes         int64
	processed, failures   int64
	connects, disconnects int64
}

func (c *counters) drain() period {
	return period{
		inflow:      c.inflow.Swap(0),
		outflow:     c.outflow.Swap(0),
		reads:       c.reads.Swap(0),
		writes:      c.writes.Swap(0),
		processed:   c.processed.Swap(0),
		failures:    c.failures.Swap(0),
		connects:    c.connects.Swap(0),
		disconnects: c.disconnects.Swap(0),
	}
}
