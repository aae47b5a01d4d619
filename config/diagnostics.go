package config

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-netplug/internal/util/logger"
)

// DiagnosticsConfig 诊断配置
type DiagnosticsConfig struct {
	// FxEvents 输出依赖注入容器事件
	FxEvents bool `json:"fx_events"`

	// LogLevel 日志级别，语法同 NETPLUG_LOG_LEVEL，空表示使用环境变量
	LogLevel string `json:"log_level,omitempty"`
}

// DefaultDiagnosticsConfig 返回默认诊断配置
func DefaultDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{}
}

// Validate 验证诊断配置
func (c DiagnosticsConfig) Validate() error {
	if c.LogLevel == "" {
		return nil
	}
	for _, part := range strings.Split(c.LogLevel, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := part
		if _, lvl, found := strings.Cut(part, "="); found {
			name = strings.TrimSpace(lvl)
		}
		if _, ok := logger.ParseLevel(name); !ok {
			return fmt.Errorf("%w: diagnostics.log_level %q", ErrInvalidConfig, part)
		}
	}
	return nil
}
