package config

import (
	"fmt"

	"github.com/dep2p/go-netplug/pkg/types"
)

// SocketConfig 套接字调优配置
type SocketConfig struct {
	// Enable 是否启用
	Enable bool `json:"enable"`

	// Options 选项名到取值，例如 {"SO_RCVBUF": 65536}
	//
	// 未设置 TCP_NODELAY 时默认启用。
	Options map[string]int `json:"options"`
}

// DefaultSocketConfig 返回默认套接字配置
func DefaultSocketConfig() SocketConfig {
	return SocketConfig{Enable: true}
}

// Validate 验证套接字配置
func (c SocketConfig) Validate() error {
	for name := range c.Options {
		if !types.SocketOption(name).Valid() {
			return fmt.Errorf("%w: unknown socket option %q", ErrInvalidConfig, name)
		}
	}
	return nil
}
