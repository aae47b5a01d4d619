package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// ============================================================================
//                              Manual - 确定性调度器
// ============================================================================

// Manual 由调用者推进时间的调度器
//
// 到期任务在 Advance 的调用 goroutine 中按到期时间顺序同步执行，
// 执行时时钟恰好停在任务的到期时间。
type Manual struct {
	clk *clock.Mock

	mu    sync.Mutex
	queue []*manualTask
	seq   uint64
}

var _ pkgif.Scheduler = (*Manual)(nil)

type manualTask struct {
	m        *Manual
	due      time.Time
	seq      uint64
	period   time.Duration
	fn       func()
	canceled bool
}

// NewManual 创建确定性调度器
func NewManual() *Manual {
	return &Manual{clk: clock.NewMock()}
}

// Clock 返回底层模拟时钟
func (m *Manual) Clock() *clock.Mock { return m.clk }

// Now 实现 Scheduler
func (m *Manual) Now() time.Time { return m.clk.Now() }

// ScheduleOnce 实现 Scheduler
func (m *Manual) ScheduleOnce(delay time.Duration, fn func()) pkgif.Cancelable {
	return m.push(delay, 0, fn)
}

// ScheduleRecurring 实现 Scheduler
func (m *Manual) ScheduleRecurring(initial, period time.Duration, fn func()) pkgif.Cancelable {
	if period <= 0 {
		panic("scheduler: non-positive period")
	}
	return m.push(initial, period, fn)
}

func (m *Manual) push(delay, period time.Duration, fn func()) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTask{m: m, due: m.clk.Now().Add(delay), seq: m.seq, period: period, fn: fn}
	m.insert(t)
	return t
}

func (m *Manual) insert(t *manualTask) {
	i := sort.Search(len(m.queue), func(i int) bool {
		q := m.queue[i]
		return q.due.After(t.due) || (q.due.Equal(t.due) && q.seq > t.seq)
	})
	m.queue = append(m.queue, nil)
	copy(m.queue[i+1:], m.queue[i:])
	m.queue[i] = t
}

// Cancel 实现 Cancelable
func (t *manualTask) Cancel() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.canceled {
		return false
	}
	t.canceled = true
	for i, q := range t.m.queue {
		if q == t {
			t.m.queue = append(t.m.queue[:i], t.m.queue[i+1:]...)
			return true
		}
	}
	return t.period > 0
}

// Advance 推进时间 d，依次执行期间到期的任务
func (m *Manual) Advance(d time.Duration) {
	target := m.clk.Now().Add(d)

	for {
		m.mu.Lock()
		if len(m.queue) == 0 || m.queue[0].due.After(target) {
			m.mu.Unlock()
			break
		}
		t := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		if t.due.After(m.clk.Now()) {
			m.clk.Set(t.due)
		}
		t.fn()

		m.mu.Lock()
		if t.period > 0 && !t.canceled {
			m.seq++
			t.seq = m.seq
			t.due = m.clk.Now().Add(t.period)
			m.insert(t)
		}
		m.mu.Unlock()
	}

	if target.After(m.clk.Now()) {
		m.clk.Set(target)
	}
}

// Pending 返回待执行任务数
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
