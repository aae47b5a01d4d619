package config

import (
	"fmt"
	"time"
)

// HeartbeatConfig 心跳配置
type HeartbeatConfig struct {
	// Enable 是否启用
	Enable bool `json:"enable"`

	// HeartRate 空闲多久后发送探测
	HeartRate Duration `json:"heart_rate"`

	// Timeout 空闲多久判定超时；0 表示只探测不超时
	Timeout Duration `json:"timeout"`

	// Probe 探测消息
	Probe string `json:"probe"`

	// Reply 对端探测的应答消息
	Reply string `json:"reply"`
}

// DefaultHeartbeatConfig 返回默认心跳配置
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Enable:    false,
		HeartRate: Duration(10 * time.Second),
		Timeout:   Duration(30 * time.Second),
		Probe:     "PING",
		Reply:     "PONG",
	}
}

// Validate 验证心跳配置
func (c HeartbeatConfig) Validate() error {
	if c.HeartRate <= 0 {
		return fmt.Errorf("%w: heartbeat.heart_rate must be positive", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: heartbeat.timeout is negative", ErrInvalidConfig)
	}
	if c.Timeout > 0 && c.HeartRate >= c.Timeout {
		return fmt.Errorf("%w: heartbeat.heart_rate (%s) must be less than timeout (%s)",
			ErrInvalidConfig, c.HeartRate, c.Timeout)
	}
	if c.Probe == "" {
		return fmt.Errorf("%w: heartbeat.probe is empty", ErrInvalidConfig)
	}
	return nil
}
