package sockopt

import (
	"fmt"
	"sort"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/pkg/types"
)

// Config 套接字调优配置
type Config struct {
	// Options 选项到取值；布尔选项以非 0 表示开启
	Options map[types.SocketOption]int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Options: map[types.SocketOption]int{}}
}

// Validate 验证配置
func (c Config) Validate() error {
	for opt := range c.Options {
		if !opt.Valid() {
			return fmt.Errorf("%w: unknown option %q", ErrInvalidConfig, opt)
		}
	}
	return nil
}

// ConfigFromUnified 从统一配置创建
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	for name, v := range cfg.Socket.Options {
		c.Options[types.SocketOption(name)] = v
	}
	return c
}

// setting 一条待应用的选项
type setting struct {
	opt   types.SocketOption
	value int
}

// effective 合并默认值并按选项名排序
func (c Config) effective() []setting {
	merged := map[types.SocketOption]int{types.TCPNoDelay: 1}
	for opt, v := range c.Options {
		merged[opt] = v
	}

	out := make([]setting, 0, len(merged))
	for opt, v := range merged {
		out = append(out, setting{opt, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].opt < out[j].opt })
	return out
}
