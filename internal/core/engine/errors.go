package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineClosed 引擎已停止
	ErrEngineClosed = errors.New("engine: closed")

	// ErrAlreadyStarted 引擎已启动
	ErrAlreadyStarted = errors.New("engine: already started")

	// ErrWriteQueueFull 会话写队列已满
	ErrWriteQueueFull = errors.New("engine: write queue full")

	// ErrLineTooLong 行超过最大长度
	ErrLineTooLong = errors.New("engine: line too long")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("engine: invalid config")
)

func errUnsupportedMessage(msg any) error {
	return fmt.Errorf("engine: cannot encode message of type %T", msg)
}
