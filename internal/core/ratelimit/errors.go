package ratelimit

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("ratelimit: invalid config")

	// ErrNoScheduler 缺少调度器
	ErrNoScheduler = errors.New("ratelimit: scheduler is required")
)
