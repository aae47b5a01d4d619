package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// FromJSON 从 JSON 创建配置，未出现的字段保持默认值
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从文件加载并验证配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ApplyPreset 应用预设
//
//   - "minimal": 只启用套接字调优
//   - "standard": 套接字调优、流量监控、心跳
//   - "secure": standard 基础上启用 TLS 与黑名单
func ApplyPreset(cfg *Config, name string) error {
	if cfg == nil {
		return ErrNilConfig
	}

	switch name {
	case "":
		return nil
	case "minimal":
		cfg.Socket.Enable = true
		cfg.Monitor.Enable = false
		cfg.Heartbeat.Enable = false
		cfg.TLS.Enable = false
		cfg.Blacklist.Enable = false
		cfg.RateLimit.Enable = false
		cfg.Tracer.Enable = false
	case "standard":
		cfg.Socket.Enable = true
		cfg.Monitor.Enable = true
		cfg.Heartbeat.Enable = true
	case "secure":
		if err := ApplyPreset(cfg, "standard"); err != nil {
			return err
		}
		cfg.TLS.Enable = true
		cfg.TLS.MinVersion = "1.3"
		cfg.Blacklist.Enable = true
	default:
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
	}
	return nil
}
