package scheduler

import (
	"fmt"
	"runtime"

	"github.com/dep2p/go-netplug/config"
)

// Config 调度器配置
type Config struct {
	// Workers 工作池大小
	Workers int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Workers: runtime.GOMAXPROCS(0)}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建调度器配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg != nil && cfg.Scheduler.Workers > 0 {
		c.Workers = cfg.Scheduler.Workers
	}
	return c
}
