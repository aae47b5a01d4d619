package liveness

import "errors"

var (
	// ErrInvalidConfig 配置无效（例如 HeartRate >= Timeout）
	ErrInvalidConfig = errors.New("liveness: invalid config")

	// ErrNoScheduler 缺少调度器
	ErrNoScheduler = errors.New("liveness: scheduler is required")
)
