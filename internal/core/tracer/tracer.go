package tracer

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

var log = logger.Logger("tracer")

// Record 一次完成的读或写
type Record struct {
	Direction types.IODirection
	Local     net.Addr
	Remote    net.Addr
	Time      time.Time
	// Data 实际传输字节的副本
	Data []byte
}

// Observer 接收追踪记录，可能被多个 I/O goroutine 并发调用
type Observer func(r Record)

// Config 追踪配置
type Config struct {
	Read  bool
	Write bool
	// MaxBytes 默认观察者每条记录最多输出的字节数，0 不截断
	MaxBytes int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	d := config.DefaultTracerConfig()
	return Config{Read: d.Read, Write: d.Write, MaxBytes: d.MaxBytes}
}

// ConfigFromUnified 从统一配置创建
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{Read: cfg.Tracer.Read, Write: cfg.Tracer.Write, MaxBytes: cfg.Tracer.MaxBytes}
}

// Option 追踪插件选项
type Option func(*Tracer)

// WithReadObserver 设置读方向观察者
func WithReadObserver(o Observer) Option {
	return func(t *Tracer) { t.onRead = o }
}

// WithWriteObserver 设置写方向观察者
func WithWriteObserver(o Observer) Option {
	return func(t *Tracer) { t.onWrite = o }
}

// WithClock 设置记录时间来源
func WithClock(now func() time.Time) Option {
	return func(t *Tracer) { t.now = now }
}

// ============================================================================
//                              Tracer
// ============================================================================

// Tracer 字节流追踪插件
type Tracer struct {
	pipeline.Base

	onRead  Observer
	onWrite Observer
	now     func() time.Time

	records atomic.Int64
	bytes   atomic.Int64
}

var _ pkgif.Plugin = (*Tracer)(nil)

// New 创建追踪插件
//
// 配置启用但未提供观察者的方向使用日志观察者。
func New(cfg Config, opts ...Option) *Tracer {
	t := &Tracer{
		Base: pipeline.NewBase(config.PluginTracer),
		now:  time.Now,
	}
	if cfg.Read {
		t.onRead = LogObserver(cfg.MaxBytes)
	}
	if cfg.Write {
		t.onWrite = LogObserver(cfg.MaxBytes)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnAccept 装配追踪装饰器；两个方向都没有观察者时原样返回
func (t *Tracer) OnAccept(ch pkgif.Channel) (pkgif.Channel, error) {
	if t.onRead == nil && t.onWrite == nil {
		return ch, nil
	}
	return &tracedChannel{Wrapper: channel.Wrap(ch), t: t}, nil
}

// Stats 返回 (记录数, 追踪字节数)
func (t *Tracer) Stats() (records, bytes int64) {
	return t.records.Load(), t.bytes.Load()
}

func (t *Tracer) emit(o Observer, dir types.IODirection, ch pkgif.Channel, data []byte) {
	t.records.Add(1)
	t.bytes.Add(int64(len(data)))
	o(Record{
		Direction: dir,
		Local:     ch.LocalAddr(),
		Remote:    ch.RemoteAddr(),
		Time:      t.now(),
		Data:      data,
	})
}

// ============================================================================
//                              tracedChannel
// ============================================================================

type tracedChannel struct {
	channel.Wrapper
	t *Tracer
}

// Read 实现 Channel
func (c *tracedChannel) Read(buf *types.Buffer, handler pkgif.CompletionHandler) {
	if c.t.onRead == nil {
		c.Channel.Read(buf, handler)
		return
	}
	c.Channel.Read(buf, c.observe(types.IORead, c.t.onRead, buf, handler))
}

// Write 实现 Channel
func (c *tracedChannel) Write(buf *types.Buffer, handler pkgif.CompletionHandler) {
	if c.t.onWrite == nil {
		c.Channel.Write(buf, handler)
		return
	}
	c.Channel.Write(buf, c.observe(types.IOWrite, c.t.onWrite, buf, handler))
}

// observe 记下操作前的位置，完成后复制 [start, start+n)
func (c *tracedChannel) observe(dir types.IODirection, o Observer, buf *types.Buffer, handler pkgif.CompletionHandler) pkgif.CompletionHandler {
	start := buf.Position()
	return func(n int, err error) {
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf.Array()[start:start+n])
			c.t.emit(o, dir, c, data)
		}
		handler(n, err)
	}
}

// ============================================================================
//                              日志观察者
// ============================================================================

// LogObserver 在 debug 级别输出十六进制转储，超过 maxBytes 的部分截断
func LogObserver(maxBytes int) Observer {
	return func(r Record) {
		if !log.Enabled(context.Background(), slog.LevelDebug) {
			return
		}
		data := r.Data
		truncated := false
		if maxBytes > 0 && len(data) > maxBytes {
			data, truncated = data[:maxBytes], true
		}
		log.Debug("stream "+r.Direction.String(),
			"remote", r.Remote,
			"local", r.Local,
			"len", len(r.Data),
			"truncated", truncated,
			"dump", "\n"+hex.Dump(data))
	}
}
