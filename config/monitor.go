package config

import (
	"fmt"
	"time"
)

// MonitorConfig 流量监控配置
type MonitorConfig struct {
	// Enable 是否启用
	Enable bool `json:"enable"`

	// Interval 快照周期
	Interval Duration `json:"interval"`

	// Prometheus 是否导出 Prometheus 指标
	Prometheus bool `json:"prometheus"`

	// Namespace Prometheus 指标命名空间
	Namespace string `json:"namespace"`

	// MetricsAddr /metrics 监听地址，空表示不监听
	MetricsAddr string `json:"metrics_addr,omitempty"`

	// PublishEvents 是否向事件总线发布快照
	PublishEvents bool `json:"publish_events"`
}

// DefaultMonitorConfig 返回默认监控配置
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enable:        true,
		Interval:      Duration(time.Minute),
		Prometheus:    true,
		Namespace:     "netplug",
		PublishEvents: true,
	}
}

// Validate 验证监控配置
func (c MonitorConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: monitor.interval must be positive", ErrInvalidConfig)
	}
	if c.Prometheus && c.Namespace == "" {
		return fmt.Errorf("%w: monitor.namespace is empty", ErrInvalidConfig)
	}
	return nil
}
