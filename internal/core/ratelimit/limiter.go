package ratelimit

import (
	"sync/atomic"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

var log = logger.Logger("ratelimit")

// Limiter 限速插件
type Limiter struct {
	pipeline.Base

	cfg   Config
	sched pkgif.Scheduler

	clipped  atomic.Int64
	deferred atomic.Int64
	dropped  atomic.Int64
}

var _ pkgif.Plugin = (*Limiter)(nil)

// Stats 限速统计
type Stats struct {
	// Clipped 被截断的操作数
	Clipped int64
	// Deferred 因配额耗尽推迟的操作数
	Deferred int64
	// Dropped 重试时通道已关闭而放弃的操作数
	Dropped int64
}

// New 创建限速插件
func New(cfg Config, sched pkgif.Scheduler) (*Limiter, error) {
	if sched == nil {
		return nil, ErrNoScheduler
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug("rate limiter created", "read_limit", cfg.ReadLimit, "write_limit", cfg.WriteLimit, "window", cfg.Window)
	return &Limiter{
		Base:  pipeline.NewBase(config.PluginRateLimit),
		cfg:   cfg,
		sched: sched,
	}, nil
}

// OnAccept 为通道装配读写窗口；两个方向都不限速时原样返回
func (l *Limiter) OnAccept(ch pkgif.Channel) (pkgif.Channel, error) {
	if !l.cfg.Enabled() {
		return ch, nil
	}

	now := l.sched.Now()
	lc := &limitedChannel{Wrapper: channel.Wrap(ch), l: l}
	if l.cfg.ReadLimit > 0 {
		lc.read = newWindow(l.cfg.ReadLimit, l.cfg.Window, l.cfg.Slack, now)
	}
	if l.cfg.WriteLimit > 0 {
		lc.write = newWindow(l.cfg.WriteLimit, l.cfg.Window, l.cfg.Slack, now)
	}
	return lc, nil
}

// Stats 返回统计
func (l *Limiter) Stats() Stats {
	return Stats{
		Clipped:  l.clipped.Load(),
		Deferred: l.deferred.Load(),
		Dropped:  l.dropped.Load(),
	}
}
