// Package config 提供统一的配置管理
//
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，均有 Default*Config() 与 Validate()
//   - 支持从 JSON 加载和保存
//   - 支持预设（minimal/standard/secure）
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.RateLimit.Enable = true
//	cfg.RateLimit.ReadLimit = 64 << 10
//
//	cfg, err := config.LoadFile("netplug.json")
package config

// Config 是 netplug 的完整配置
//
// 每个插件对应一个子配置，Enable 为 false 的插件不会注册到流水线。
type Config struct {
	// Engine 引擎配置
	Engine EngineConfig `json:"engine"`

	// Scheduler 调度器配置
	Scheduler SchedulerConfig `json:"scheduler"`

	// Pipeline 流水线配置
	Pipeline PipelineConfig `json:"pipeline"`

	// Blacklist 黑名单配置
	Blacklist BlacklistConfig `json:"blacklist"`

	// TLS 安全通道配置
	TLS TLSConfig `json:"tls"`

	// Socket 套接字调优配置
	Socket SocketConfig `json:"socket"`

	// RateLimit 限速配置
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Heartbeat 心跳配置
	Heartbeat HeartbeatConfig `json:"heartbeat"`

	// Monitor 流量监控配置
	Monitor MonitorConfig `json:"monitor"`

	// Tracer 流追踪配置
	Tracer TracerConfig `json:"tracer"`

	// Diagnostics 诊断配置
	Diagnostics DiagnosticsConfig `json:"diagnostics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Engine:      DefaultEngineConfig(),
		Scheduler:   DefaultSchedulerConfig(),
		Pipeline:    DefaultPipelineConfig(),
		Blacklist:   DefaultBlacklistConfig(),
		TLS:         DefaultTLSConfig(),
		Socket:      DefaultSocketConfig(),
		RateLimit:   DefaultRateLimitConfig(),
		Heartbeat:   DefaultHeartbeatConfig(),
		Monitor:     DefaultMonitorConfig(),
		Tracer:      DefaultTracerConfig(),
		Diagnostics: DefaultDiagnosticsConfig(),
	}
}

// Validate 验证全部子配置
func (c *Config) Validate() error {
	subs := []interface{ Validate() error }{
		c.Engine, c.Scheduler, c.Pipeline, c.Blacklist, c.TLS,
		c.Socket, c.RateLimit, c.Heartbeat, c.Monitor, c.Tracer, c.Diagnostics,
	}
	for _, s := range subs {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
