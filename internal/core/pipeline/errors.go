package pipeline

import "errors"

var (
	// ErrPluginPanic 插件钩子 panic
	ErrPluginPanic = errors.New("pipeline: plugin panicked")

	// ErrNilPlugin 注册了 nil 插件
	ErrNilPlugin = errors.New("pipeline: nil plugin")
)
