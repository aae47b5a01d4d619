package liveness

import (
	"fmt"
	"time"

	"github.com/dep2p/go-netplug/config"
)

// Config 心跳配置
type Config struct {
	// HeartRate 检查周期，也是发送探测前的最长空闲时间
	HeartRate time.Duration
	// Timeout 判定超时的空闲时间，0 表示只探测不超时
	Timeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	d := config.DefaultHeartbeatConfig()
	return Config{HeartRate: d.HeartRate.Duration(), Timeout: d.Timeout.Duration()}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.HeartRate <= 0 {
		return fmt.Errorf("%w: heart rate must be positive", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	if c.Timeout > 0 && c.HeartRate >= c.Timeout {
		return fmt.Errorf("%w: heart rate %s must be less than timeout %s", ErrInvalidConfig, c.HeartRate, c.Timeout)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		HeartRate: cfg.Heartbeat.HeartRate.Duration(),
		Timeout:   cfg.Heartbeat.Timeout.Duration(),
	}
}
