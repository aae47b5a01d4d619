package config

import "fmt"

// TracerConfig 流追踪配置
type TracerConfig struct {
	// Enable 是否启用
	Enable bool `json:"enable"`

	// Read 追踪读方向
	Read bool `json:"read"`

	// Write 追踪写方向
	Write bool `json:"write"`

	// MaxBytes 日志中每条记录最多打印的字节数，0 表示不截断
	MaxBytes int `json:"max_bytes"`
}

// DefaultTracerConfig 返回默认追踪配置
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		Enable:   false,
		Read:     true,
		Write:    true,
		MaxBytes: 256,
	}
}

// Validate 验证追踪配置
func (c TracerConfig) Validate() error {
	if c.MaxBytes < 0 {
		return fmt.Errorf("%w: tracer.max_bytes is negative", ErrInvalidConfig)
	}
	return nil
}
