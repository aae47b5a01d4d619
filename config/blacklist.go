package config

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// BlacklistConfig 黑名单配置
type BlacklistConfig struct {
	// Enable 是否启用
	Enable bool `json:"enable"`

	// Rules 初始拒绝规则，IP 或 CIDR，例如 "10.0.0.7", "192.168.0.0/16"
	Rules []string `json:"rules"`

	// RecentSize 最近拒绝记录表容量
	RecentSize int `json:"recent_size"`
}

// DefaultBlacklistConfig 返回默认黑名单配置
func DefaultBlacklistConfig() BlacklistConfig {
	return BlacklistConfig{
		Enable:     false,
		RecentSize: 256,
	}
}

// Validate 验证黑名单配置
func (c BlacklistConfig) Validate() error {
	if c.RecentSize <= 0 {
		return fmt.Errorf("%w: blacklist.recent_size must be positive", ErrInvalidConfig)
	}
	for _, r := range c.Rules {
		if strings.Contains(r, "/") {
			if _, _, err := net.ParseCIDR(r); err != nil {
				return fmt.Errorf("%w: blacklist rule %q: %v", ErrInvalidConfig, r, err)
			}
			continue
		}
		if _, err := netip.ParseAddr(r); err != nil {
			return fmt.Errorf("%w: blacklist rule %q: %v", ErrInvalidConfig, r, err)
		}
	}
	return nil
}
