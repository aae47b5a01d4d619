package engine

import (
	"fmt"

	"github.com/dep2p/go-netplug/config"
)

// Config 引擎配置
type Config struct {
	ListenAddr     string
	ReadBufferSize int
	WriteQueueSize int
	MaxLineLength  int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.ReadBufferSize <= 0 || c.WriteQueueSize <= 0 {
		return fmt.Errorf("%w: buffer sizes must be positive", ErrInvalidConfig)
	}
	if c.MaxLineLength <= 0 || c.MaxLineLength > c.ReadBufferSize {
		return fmt.Errorf("%w: max line length must be in (0, %d]", ErrInvalidConfig, c.ReadBufferSize)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建
func ConfigFromUnified(cfg *config.Config) Config {
	e := config.DefaultEngineConfig()
	if cfg != nil {
		e = cfg.Engine
	}
	return Config{
		ListenAddr:     e.ListenAddr,
		ReadBufferSize: e.ReadBufferSize,
		WriteQueueSize: e.WriteQueueSize,
		MaxLineLength:  e.MaxLineLength,
	}
}
