package config

import "fmt"

// 内置插件名称
const (
	PluginSocket    = "sockopt"
	PluginBlacklist = "blacklist"
	PluginRateLimit = "ratelimit"
	PluginMonitor   = "monitor"
	PluginTLS       = "tls"
	PluginTracer    = "tracer"
	PluginHeartbeat = "heartbeat"
)

// PipelineConfig 流水线配置
type PipelineConfig struct {
	// Order 插件注册顺序
	//
	// 未列出的插件按名称排序追加在末尾。
	// 位于 tls 之前的装饰器看到密文，之后的看到明文。
	Order []string `json:"order"`
}

// DefaultPipelineConfig 返回默认流水线配置
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Order: []string{
			PluginSocket,
			PluginBlacklist,
			PluginRateLimit,
			PluginMonitor,
			PluginTLS,
			PluginTracer,
			PluginHeartbeat,
		},
	}
}

// Validate 验证流水线配置
func (c PipelineConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Order))
	for _, name := range c.Order {
		if name == "" {
			return fmt.Errorf("%w: pipeline.order contains an empty name", ErrInvalidConfig)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: pipeline.order lists %q twice", ErrInvalidConfig, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
