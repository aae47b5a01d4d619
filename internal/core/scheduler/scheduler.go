package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

var log = logger.Logger("scheduler")

// ============================================================================
//                              Scheduler
// ============================================================================

// Scheduler 基于时钟定时器与有界工作池的调度器
type Scheduler struct {
	clk  clock.Clock
	pool errgroup.Group

	mu      sync.Mutex
	tasks   map[*task]struct{}
	stopped bool

	// submit 读锁覆盖“检查 stopped 并提交到工作池”，Stop 取写锁后才调用 pool.Wait
	submit sync.RWMutex
}

var _ pkgif.Scheduler = (*Scheduler)(nil)

// Option 调度器选项
type Option func(*Scheduler)

// WithClock 注入时钟
func WithClock(clk clock.Clock) Option {
	return func(s *Scheduler) { s.clk = clk }
}

// New 创建调度器
func New(cfg Config, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scheduler{
		clk:   clock.New(),
		tasks: make(map[*task]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pool.SetLimit(cfg.Workers)
	return s, nil
}

// task 已调度任务
type task struct {
	s      *Scheduler
	fn     func()
	period time.Duration

	mu       sync.Mutex
	timer    *clock.Timer
	canceled atomic.Bool
}

// Now 实现 Scheduler
func (s *Scheduler) Now() time.Time { return s.clk.Now() }

// ScheduleOnce 实现 Scheduler
func (s *Scheduler) ScheduleOnce(delay time.Duration, fn func()) pkgif.Cancelable {
	return s.schedule(delay, 0, fn)
}

// ScheduleRecurring 实现 Scheduler
//
// 下一次执行在上一次执行结束后 period 触发。
func (s *Scheduler) ScheduleRecurring(initial, period time.Duration, fn func()) pkgif.Cancelable {
	if period <= 0 {
		panic("scheduler: non-positive period")
	}
	return s.schedule(initial, period, fn)
}

func (s *Scheduler) schedule(delay, period time.Duration, fn func()) *task {
	t := &task{s: s, fn: fn, period: period}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		t.canceled.Store(true)
		return t
	}
	s.tasks[t] = struct{}{}
	t.arm(delay)
	return t
}

func (t *task) arm(delay time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled.Load() {
		return
	}
	t.timer = t.s.clk.AfterFunc(delay, t.fire)
}

// fire 在时钟 goroutine 中执行，把任务交给工作池；工作池满时阻塞等待
func (t *task) fire() {
	if t.canceled.Load() {
		return
	}
	t.s.submit.RLock()
	defer t.s.submit.RUnlock()

	t.s.mu.Lock()
	stopped := t.s.stopped
	t.s.mu.Unlock()
	if stopped {
		return
	}

	t.s.pool.Go(func() error {
		t.run()
		return nil
	})
}

func (t *task) run() {
	if t.canceled.Load() {
		return
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("scheduled task panicked", "panic", r)
			}
		}()
		t.fn()
	}()

	if t.period > 0 {
		t.arm(t.period)
		return
	}
	t.s.forget(t)
}

// Cancel 实现 Cancelable
//
// 周期任务被取消后不再执行，总是返回 true。
func (t *task) Cancel() bool {
	if !t.canceled.CompareAndSwap(false, true) {
		return false
	}

	t.mu.Lock()
	stopped := t.timer != nil && t.timer.Stop()
	t.mu.Unlock()

	t.s.forget(t)
	return stopped || t.period > 0
}

func (s *Scheduler) forget(t *task) {
	s.mu.Lock()
	delete(s.tasks, t)
	s.mu.Unlock()
}

// Pending 返回尚未完成（或仍在周期中）的任务数
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop 取消全部任务并等待正在运行的任务结束
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	tasks := s.tasks
	s.tasks = make(map[*task]struct{})
	s.mu.Unlock()

	for t := range tasks {
		t.canceled.Store(true)
		t.mu.Lock()
		if t.timer != nil {
			t.timer.Stop()
		}
		t.mu.Unlock()
	}

	// 等待已越过 stopped 检查的提交完成，之后不会再有 pool.Go
	s.submit.Lock()
	s.submit.Unlock()

	_ = s.pool.Wait()
	log.Debug("scheduler stopped", "canceled", len(tasks))
}
