package ratelimit

import (
	"github.com/dep2p/go-netplug/internal/core/channel"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

type ioFunc func(*types.Buffer, pkgif.CompletionHandler)

// limitedChannel 限速装饰器，窗口状态随通道存在
type limitedChannel struct {
	channel.Wrapper

	l     *Limiter
	read  *window
	write *window
}

// Read 实现 Channel
func (c *limitedChannel) Read(buf *types.Buffer, handler pkgif.CompletionHandler) {
	c.throttle(c.read, c.Channel.Read, buf, handler)
}

// Write 实现 Channel
func (c *limitedChannel) Write(buf *types.Buffer, handler pkgif.CompletionHandler) {
	c.throttle(c.write, c.Channel.Write, buf, handler)
}

func (c *limitedChannel) throttle(w *window, op ioFunc, buf *types.Buffer, handler pkgif.CompletionHandler) {
	requested := buf.Remaining()
	if w == nil || requested == 0 {
		op(buf, handler)
		return
	}

	n, wait := w.reserve(c.l.sched.Now(), requested)
	if n <= 0 {
		c.l.deferred.Add(1)
		c.l.sched.ScheduleOnce(wait, func() {
			if !c.IsOpen() {
				c.l.dropped.Add(1)
				return
			}
			c.throttle(w, op, buf, handler)
		})
		return
	}

	limit := buf.Limit()
	if n < requested {
		c.l.clipped.Add(1)
		buf.SetLimit(buf.Position() + n)
	}
	op(buf, func(transferred int, err error) {
		buf.SetLimit(limit)
		if transferred > 0 {
			w.commit(c.l.sched.Now(), transferred)
		}
		handler(transferred, err)
	})
}
