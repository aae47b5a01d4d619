package metrics

import (
	"github.com/dep2p/go-netplug/internal/core/channel"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// countingChannel 统计读写字节与完成次数
type countingChannel struct {
	channel.Wrapper
	c *counters
}

// Read 实现 Channel
func (ch *countingChannel) Read(buf *types.Buffer, handler pkgif.CompletionHandler) {
	ch.Channel.Read(buf, func(n int, err error) {
		ch.c.reads.Add(1)
		if n > 0 {
			ch.c.inflow.Add(int64(n))
		}
		handler(n, err)
	})
}

// Write 实现 Channel
func (ch *countingChannel) Write(buf *types.Buffer, handler pkgif.CompletionHandler) {
	ch.Channel.Write(buf, func(n int, err error) {
		ch.c.writes.Add(1)
		if n > 0 {
			ch.c.outflow.Add(int64(n))
		}
		handler(n, err)
	})
}
