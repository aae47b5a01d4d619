// Package interfaces 定义 netplug 公共接口
//
// 本文件定义 Scheduler 接口。
package interfaces

import "time"

// Cancelable 可取消的已调度任务
type Cancelable interface {
	// Cancel 取消任务，返回 true 表示本次调用阻止了后续执行
	Cancel() bool
}

// Scheduler 共享定时任务调度器
//
// 任务运行在独立于 I/O goroutine 的有界工作池上。
type Scheduler interface {
	// Now 调度器时钟的当前时间
	Now() time.Time

	// ScheduleOnce 在 delay 后执行一次 task
	ScheduleOnce(delay time.Duration, task func()) Cancelable

	// ScheduleRecurring 在 initial 后首次执行，此后每隔 period 执行
	ScheduleRecurring(initial, period time.Duration, task func()) Cancelable
}
