package metrics

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("metrics: invalid config")

	// ErrNoScheduler 缺少调度器
	ErrNoScheduler = errors.New("metrics: scheduler is required")

	// ErrAlreadyStarted 周期快照已启动
	ErrAlreadyStarted = errors.New("metrics: monitor already started")
)
