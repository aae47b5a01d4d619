package gater

import (
	"fmt"

	"github.com/dep2p/go-netplug/config"
)

// Config 黑名单配置
type Config struct {
	// Rules 初始规则字符串，见 ParseRule
	Rules []string

	// RecentSize 最近拒绝表容量
	RecentSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{RecentSize: config.DefaultBlacklistConfig().RecentSize}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.RecentSize <= 0 {
		return fmt.Errorf("%w: recent size must be positive", ErrInvalidRule)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.Rules = append([]string(nil), cfg.Blacklist.Rules...)
	if cfg.Blacklist.RecentSize > 0 {
		c.RecentSize = cfg.Blacklist.RecentSize
	}
	return c
}
