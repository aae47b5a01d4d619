package sockopt

import "errors"

var (
	// ErrUnsupported 当前平台或连接类型不支持该选项
	ErrUnsupported = errors.New("sockopt: option not supported")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("sockopt: invalid config")
)
