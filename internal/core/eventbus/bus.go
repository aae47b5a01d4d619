package eventbus

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

var log = logger.Logger("eventbus")

// DefaultBufSize 默认订阅缓冲区大小
const DefaultBufSize = 16

// ============================================================================
//                              Bus
// ============================================================================

// Bus 事件总线
type Bus struct {
	mu     sync.RWMutex
	topics map[reflect.Type]*topic
	closed bool
}

var _ pkgif.EventBus = (*Bus)(nil)

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{topics: make(map[reflect.Type]*topic)}
}

// topic 单个事件类型的订阅者集合
type topic struct {
	typ reflect.Type

	mu       sync.Mutex
	subs     []*Subscription
	stateful bool
	last     any

	dropped  atomic.Int64
	warnDrop rate.Sometimes
}

func eventTypeOf(eventType any) (reflect.Type, error) {
	if eventType == nil {
		return nil, ErrInvalidEventType
	}
	typ := reflect.TypeOf(eventType)
	if typ.Kind() != reflect.Ptr {
		return nil, ErrNonPointerType
	}
	return typ.Elem(), nil
}

// topicFor 获取或创建 typ 对应的 topic
func (b *Bus) topicFor(typ reflect.Type) (*topic, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	t, ok := b.topics[typ]
	if !ok {
		t = &topic{typ: typ, warnDrop: rate.Sometimes{Interval: 10 * time.Second}}
		b.topics[typ] = t
	}
	return t, nil
}

// Subscribe 订阅事件
func (b *Bus) Subscribe(eventType any, opts ...pkgif.SubscriptionOpt) (pkgif.Subscription, error) {
	typ, err := eventTypeOf(eventType)
	if err != nil {
		return nil, err
	}

	settings := pkgif.SubscriptionSettings{Buffer: DefaultBufSize}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Buffer < 0 {
		return nil, fmt.Errorf("eventbus: negative buffer size %d", settings.Buffer)
	}

	t, err := b.topicFor(typ)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{topic: t, out: make(chan any, settings.Buffer)}

	t.mu.Lock()
	t.subs = append(t.subs, sub)
	if t.stateful && t.last != nil {
		select {
		case sub.out <- t.last:
		default:
		}
	}
	t.mu.Unlock()

	return sub, nil
}

// Emitter 获取发射器
func (b *Bus) Emitter(eventType any, opts ...pkgif.EmitterOpt) (pkgif.Emitter, error) {
	typ, err := eventTypeOf(eventType)
	if err != nil {
		return nil, err
	}

	var settings pkgif.EmitterSettings
	for _, opt := range opts {
		opt(&settings)
	}

	t, err := b.topicFor(typ)
	if err != nil {
		return nil, err
	}
	if settings.Stateful {
		t.mu.Lock()
		t.stateful = true
		t.mu.Unlock()
	}

	return &Emitter{topic: t}, nil
}

// Close 关闭总线及全部订阅
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	topics := b.topics
	b.topics = make(map[reflect.Type]*topic)
	b.mu.Unlock()

	for _, t := range topics {
		t.mu.Lock()
		subs := t.subs
		t.subs = nil
		t.mu.Unlock()

		for _, s := range subs {
			s.closeOut()
		}
	}
	return nil
}

func (t *topic) emit(event any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stateful {
		t.last = event
	}

	for _, sub := range t.subs {
		select {
		case sub.out <- event:
		default:
			dropped := t.dropped.Add(1)
			t.warnDrop.Do(func() {
				log.Warn("slow subscriber, dropping events", "type", t.typ.String(), "dropped", dropped)
			})
		}
	}
}

func (t *topic) remove(sub *Subscription) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, s := range t.subs {
		if s == sub {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			return true
		}
	}
	return false
}

// ============================================================================
//                              Subscription
// ============================================================================

// Subscription 事件订阅
type Subscription struct {
	topic *topic
	out   chan any
	once  sync.Once
}

// Out 事件通道
func (s *Subscription) Out() <-chan any { return s.out }

// Close 取消订阅，可重复调用
func (s *Subscription) Close() error {
	s.topic.remove(s)
	s.closeOut()
	return nil
}

// closeOut 关闭输出通道；调用前须已从 topic 移除
func (s *Subscription) closeOut() {
	s.once.Do(func() { close(s.out) })
}

// ============================================================================
//                              Emitter
// ============================================================================

// Emitter 事件发射器
type Emitter struct {
	topic  *topic
	closed atomic.Bool
}

// Emit 发射事件，事件类型须与发射器一致
func (e *Emitter) Emit(event any) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if reflect.TypeOf(event) != e.topic.typ {
		return fmt.Errorf("%w: want %s, got %T", ErrTypeMismatch, e.topic.typ, event)
	}
	e.topic.emit(event)
	return nil
}

// Close 关闭发射器
func (e *Emitter) Close() error {
	e.closed.Store(true)
	return nil
}
