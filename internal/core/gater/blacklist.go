package gater

import (
	"fmt"
	"net"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

var log = logger.Logger("gater")

// ============================================================================
//                              Blacklist 插件
// ============================================================================

// Blacklist 接入黑名单插件
type Blacklist struct {
	pipeline.Base

	// rules 不可变快照，写者在 mu 下复制后整体替换
	rules atomic.Pointer[[]Rule]
	mu    sync.Mutex

	recent   *lru.Cache[string, Rejection]
	rejected atomic.Int64
	warn     rate.Sometimes
	now      func() time.Time
}

var _ pkgif.Plugin = (*Blacklist)(nil)

// Rejection 最近一次拒绝记录
type Rejection struct {
	Remote string
	Rule   string
	Count  int64
	Last   time.Time
}

// New 创建黑名单插件，rules 为初始规则
func New(cfg Config, rules ...Rule) (*Blacklist, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	recent, err := lru.New[string, Rejection](cfg.RecentSize)
	if err != nil {
		return nil, fmt.Errorf("gater: create recent table: %w", err)
	}

	b := &Blacklist{
		Base:   pipeline.NewBase(config.PluginBlacklist),
		recent: recent,
		warn:   rate.Sometimes{First: 5, Interval: 10 * time.Second},
		now:    time.Now,
	}
	empty := []Rule{}
	b.rules.Store(&empty)

	for _, s := range cfg.Rules {
		r, err := ParseRule(s)
		if err != nil {
			return nil, err
		}
		b.AddRule(r)
	}
	for _, r := range rules {
		b.AddRule(r)
	}
	return b, nil
}

// AddRule 追加规则，允许重复
//
// 不可比较的规则（如含 func 或切片字段的结构体值）可以生效，但无法被 RemoveRule 移除。
func (b *Blacklist) AddRule(r Rule) {
	if r == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := *b.rules.Load()
	next := make([]Rule, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, r)
	b.rules.Store(&next)
}

// RemoveRule 移除首个与 r 相同的规则，返回是否移除
//
// r 为 nil 或不可比较类型时返回 false。
func (b *Blacklist) RemoveRule(r Rule) bool {
	if r == nil || !reflect.TypeOf(r).Comparable() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := *b.rules.Load()
	for i, existing := range cur {
		if existing == r {
			next := make([]Rule, 0, len(cur)-1)
			next = append(next, cur[:i]...)
			next = append(next, cur[i+1:]...)
			b.rules.Store(&next)
			return true
		}
	}
	return false
}

// Rules 返回当前规则快照
func (b *Blacklist) Rules() []Rule {
	return append([]Rule(nil), *b.rules.Load()...)
}

// Allowed 评估 remote 是否被全部规则允许，返回首个拒绝的规则
func (b *Blacklist) Allowed(remote net.Addr) (bool, Rule) {
	for _, r := range *b.rules.Load() {
		if !r.Access(remote) {
			return false, r
		}
	}
	return true, nil
}

// OnAccept 实现 Plugin
func (b *Blacklist) OnAccept(ch pkgif.Channel) (pkgif.Channel, error) {
	remote := ch.RemoteAddr()
	ok, rule := b.Allowed(remote)
	if ok {
		return ch, nil
	}

	b.record(remote, rule)
	return nil, fmt.Errorf("%w: %s by %v", ErrDenied, addrString(remote), rule)
}

func (b *Blacklist) record(remote net.Addr, rule Rule) {
	n := b.rejected.Add(1)

	key := addrString(remote)
	if ip, ok := hostOf(remote); ok {
		key = ip.String()
	}

	rej, _ := b.recent.Get(key)
	rej.Remote = key
	rej.Rule = fmt.Sprint(rule)
	rej.Count++
	rej.Last = b.now()
	b.recent.Add(key, rej)

	b.warn.Do(func() {
		log.Warn("connection rejected", "remote", key, "rule", rej.Rule, "total", n)
	})
}

// Rejected 返回累计拒绝次数
func (b *Blacklist) Rejected() int64 { return b.rejected.Load() }

// RecentRejections 返回最近被拒绝的地址，最久未更新的在前
func (b *Blacklist) RecentRejections() []Rejection {
	keys := b.recent.Keys()
	out := make([]Rejection, 0, len(keys))
	for _, k := range keys {
		if r, ok := b.recent.Peek(k); ok {
			out = append(out, r)
		}
	}
	return out
}

func addrString(a net.Addr) string {
	if a == nil {
		return "<nil>"
	}
	return a.String()
}
