package metrics

import (
	"fmt"
	"time"

	"github.com/dep2p/go-netplug/config"
)

// Config 监控配置
type Config struct {
	// Interval 快照周期
	Interval time.Duration

	// Prometheus 是否导出 Prometheus 指标
	Prometheus bool
	// Namespace Prometheus 命名空间
	Namespace string
	// MetricsAddr /metrics 监听地址，空表示不监听
	MetricsAddr string

	// PublishEvents 是否发布快照事件
	PublishEvents bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	d := config.DefaultMonitorConfig()
	return Config{
		Interval:      d.Interval.Duration(),
		Prometheus:    d.Prometheus,
		Namespace:     d.Namespace,
		PublishEvents: d.PublishEvents,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.Prometheus && c.Namespace == "" {
		return fmt.Errorf("%w: empty namespace", ErrInvalidConfig)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	m := cfg.Monitor
	return Config{
		Interval:      m.Interval.Duration(),
		Prometheus:    m.Prometheus,
		Namespace:     m.Namespace,
		MetricsAddr:   m.MetricsAddr,
		PublishEvents: m.PublishEvents,
	}
}
