package config

import "fmt"

// RateLimitConfig 限速配置
type RateLimitConfig struct {
	// Enable 是否启用
	Enable bool `json:"enable"`

	// ReadLimit 每连接读限速（字节/秒），<= 0 表示不限
	ReadLimit int64 `json:"read_limit"`

	// WriteLimit 每连接写限速（字节/秒），<= 0 表示不限
	WriteLimit int64 `json:"write_limit"`
}

// DefaultRateLimitConfig 返回默认限速配置
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{}
}

// Validate 验证限速配置
func (c RateLimitConfig) Validate() error {
	if c.Enable && c.ReadLimit <= 0 && c.WriteLimit <= 0 {
		return fmt.Errorf("%w: rate_limit enabled without any limit", ErrInvalidConfig)
	}
	return nil
}
