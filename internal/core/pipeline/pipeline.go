package pipeline

import (
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

var log = logger.Logger("pipeline")

// ============================================================================
//                              Pipeline
// ============================================================================

// Pipeline 插件流水线
type Pipeline struct {
	// plugins 只读快照，Add 时整体替换
	plugins atomic.Pointer[[]pkgif.Plugin]
	addMu   sync.Mutex

	acceptRejected  atomic.Int64
	messageRejected atomic.Int64
	panics          atomic.Int64

	warnPanic rate.Sometimes
}

// Stats 流水线统计
type Stats struct {
	AcceptRejected   int64
	MessagesRejected int64
	Panics           int64
}

// New 创建流水线
func New(plugins ...pkgif.Plugin) *Pipeline {
	p := &Pipeline{warnPanic: rate.Sometimes{First: 10, Interval: time.Minute}}
	empty := []pkgif.Plugin{}
	p.plugins.Store(&empty)
	p.Add(plugins...)
	return p
}

// Add 追加插件，nil 插件被忽略
func (p *Pipeline) Add(plugins ...pkgif.Plugin) {
	p.addMu.Lock()
	defer p.addMu.Unlock()

	cur := *p.plugins.Load()
	next := make([]pkgif.Plugin, 0, len(cur)+len(plugins))
	next = append(next, cur...)
	for _, pl := range plugins {
		if pl == nil {
			log.Warn("ignoring nil plugin", "err", ErrNilPlugin)
			continue
		}
		next = append(next, pl)
		log.Debug("plugin registered", "plugin", pl.Name(), "position", len(next)-1)
	}
	p.plugins.Store(&next)
}

// Plugins 返回当前插件列表的副本
func (p *Pipeline) Plugins() []pkgif.Plugin {
	return append([]pkgif.Plugin(nil), *p.plugins.Load()...)
}

// Stats 返回统计
func (p *Pipeline) Stats() Stats {
	return Stats{
		AcceptRejected:   p.acceptRejected.Load(),
		MessagesRejected: p.messageRejected.Load(),
		Panics:           p.panics.Load(),
	}
}

// ============================================================================
//                              钩子分发
// ============================================================================

// Transforms 返回各插件接入钩子对应的通道变换（按注册顺序）
func (p *Pipeline) Transforms() []pkgif.ChannelTransform {
	plugins := *p.plugins.Load()
	out := make([]pkgif.ChannelTransform, len(plugins))
	for i, pl := range plugins {
		pl := pl
		out[i] = func(ch pkgif.Channel) (pkgif.Channel, error) {
			return p.acceptOne(pl, ch)
		}
	}
	return out
}

// OnAccept 依次执行插件接入钩子
//
// 返回错误表示连接被拒绝，调用方负责关闭原始通道。
func (p *Pipeline) OnAccept(raw pkgif.Channel) (pkgif.Channel, error) {
	ch, err := Compose(p.Transforms()...)(raw)
	if err != nil {
		p.acceptRejected.Add(1)
		return nil, err
	}
	return ch, nil
}

func (p *Pipeline) acceptOne(pl pkgif.Plugin, ch pkgif.Channel) (next pkgif.Channel, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.recordPanic(pl, "accept", r)
			next, err = nil, fmt.Errorf("%w: %s: %v", ErrPluginPanic, pl.Name(), r)
		}
	}()

	next, err = pl.OnAccept(ch)
	if err != nil {
		log.Debug("accept rejected", "plugin", pl.Name(), "remote", addrString(ch.RemoteAddr()), "err", err)
		return nil, fmt.Errorf("plugin %s: %w", pl.Name(), err)
	}
	return next, nil
}

// OnMessage 依次执行插件预处理，返回 false 表示消息被拒绝
func (p *Pipeline) OnMessage(s pkgif.Session, msg any) bool {
	for _, pl := range *p.plugins.Load() {
		if !p.messageOne(pl, s, msg) {
			p.messageRejected.Add(1)
			return false
		}
	}
	return true
}

func (p *Pipeline) messageOne(pl pkgif.Plugin, s pkgif.Session, msg any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.recordPanic(pl, "message", r)
			ok = false
		}
	}()
	return pl.OnMessage(s, msg)
}

// OnStateEvent 向全部插件广播状态事件
func (p *Pipeline) OnStateEvent(s pkgif.Session, status types.StateStatus, err error) {
	for _, pl := range *p.plugins.Load() {
		p.stateOne(pl, s, status, err)
	}
}

func (p *Pipeline) stateOne(pl pkgif.Plugin, s pkgif.Session, status types.StateStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.recordPanic(pl, "state:"+status.String(), r)
		}
	}()
	pl.OnStateEvent(s, status, err)
}

func (p *Pipeline) recordPanic(pl pkgif.Plugin, hook string, r any) {
	n := p.panics.Add(1)
	p.warnPanic.Do(func() {
		log.Error("plugin panicked",
			"plugin", pl.Name(),
			"hook", hook,
			"panic", r,
			"total", n,
			"stack", string(debug.Stack()))
	})
}

// Close 关闭实现了 io.Closer 的插件，按注册逆序
func (p *Pipeline) Close() error {
	plugins := *p.plugins.Load()
	var err error
	for i := len(plugins) - 1; i >= 0; i-- {
		if c, ok := plugins[i].(io.Closer); ok {
			if cerr := c.Close(); cerr != nil {
				err = multierr.Append(err, fmt.Errorf("close plugin %s: %w", plugins[i].Name(), cerr))
			}
		}
	}
	return err
}

func addrString(a interface{ String() string }) string {
	if a == nil {
		return ""
	}
	return a.String()
}
