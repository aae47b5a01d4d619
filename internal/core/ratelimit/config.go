package ratelimit

import (
	"fmt"
	"time"

	"github.com/dep2p/go-netplug/config"
)

const (
	// DefaultWindow 默认窗口长度
	DefaultWindow = time.Second

	// DefaultSlack 窗口剩余不足该值即开启新窗口，吸收时钟抖动
	DefaultSlack = 10 * time.Millisecond
)

// Config 限速配置
type Config struct {
	// ReadLimit 每窗口可读字节数，<= 0 不限
	ReadLimit int64
	// WriteLimit 每窗口可写字节数，<= 0 不限
	WriteLimit int64

	Window time.Duration
	Slack  time.Duration
}

// DefaultConfig 返回默认配置（不限速）
func DefaultConfig() Config {
	return Config{Window: DefaultWindow, Slack: DefaultSlack}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive", ErrInvalidConfig)
	}
	if c.Slack < 0 || c.Slack >= c.Window {
		return fmt.Errorf("%w: slack %s out of range for window %s", ErrInvalidConfig, c.Slack, c.Window)
	}
	return nil
}

// Enabled 是否有任一方向限速
func (c Config) Enabled() bool {
	return c.ReadLimit > 0 || c.WriteLimit > 0
}

// ConfigFromUnified 从统一配置创建
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.ReadLimit = cfg.RateLimit.ReadLimit
	c.WriteLimit = cfg.RateLimit.WriteLimit
	return c
}
