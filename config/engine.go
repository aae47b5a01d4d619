package config

import "fmt"

// EngineConfig 引擎配置
type EngineConfig struct {
	// ListenAddr 监听地址
	ListenAddr string `json:"listen_addr"`

	// ReadBufferSize 每个会话的读缓冲区大小
	ReadBufferSize int `json:"read_buffer_size"`

	// WriteQueueSize 每个会话允许排队的写请求数
	WriteQueueSize int `json:"write_queue_size"`

	// MaxLineLength 行解码器允许的最大行长度
	MaxLineLength int `json:"max_line_length"`
}

// DefaultEngineConfig 返回默认引擎配置
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ListenAddr:     "127.0.0.1:9000",
		ReadBufferSize: 4096,
		WriteQueueSize: 1024,
		MaxLineLength:  4096,
	}
}

// Validate 验证引擎配置
func (c EngineConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: engine.listen_addr is empty", ErrInvalidConfig)
	}
	if c.ReadBufferSize <= 0 || c.WriteQueueSize <= 0 {
		return fmt.Errorf("%w: engine buffer sizes must be positive", ErrInvalidConfig)
	}
	if c.MaxLineLength <= 0 || c.MaxLineLength > c.ReadBufferSize {
		return fmt.Errorf("%w: engine.max_line_length must be in (0, read_buffer_size]", ErrInvalidConfig)
	}
	return nil
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	// Workers 工作池大小，0 表示 GOMAXPROCS
	Workers int `json:"workers"`
}

// DefaultSchedulerConfig 返回默认调度器配置
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{}
}

// Validate 验证调度器配置
func (c SchedulerConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: scheduler.workers is negative", ErrInvalidConfig)
	}
	return nil
}
