package ratelimit

import (
	"sync"
	"time"
)

// window 单方向的固定时间窗口
type window struct {
	mu sync.Mutex

	limit  int64
	length time.Duration
	slack  time.Duration

	start    time.Time
	consumed int64
}

func newWindow(limit int64, length, slack time.Duration, now time.Time) *window {
	return &window{limit: limit, length: length, slack: slack, start: now}
}

// reserve 计算本次可传输字节数
//
// 返回 n > 0 时调用者应把操作截断到 n 字节；
// 返回 n <= 0 时调用者应在 wait 之后重试。
func (w *window) reserve(now time.Time, requested int) (n int, wait time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	remaining := w.length - now.Sub(w.start)
	if remaining <= w.slack {
		w.roll(now)
		remaining = w.length
	}

	available := w.limit - w.consumed
	if available <= 0 {
		return 0, remaining
	}
	if int64(requested) < available {
		return requested, 0
	}
	return int(available), 0
}

// commit 记录实际传输的字节数
func (w *window) commit(now time.Time, n int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.start) >= w.length {
		w.roll(now)
	}
	w.consumed += int64(n)
}

func (w *window) roll(now time.Time) {
	w.start = now
	w.consumed = 0
}

// snapshot 返回当前窗口起点与已用字节
func (w *window) snapshot() (time.Time, int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.start, w.consumed
}
