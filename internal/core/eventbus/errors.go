package eventbus

import "errors"

var (
	// ErrClosed 事件总线或发射器已关闭
	ErrClosed = errors.New("eventbus: closed")

	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("eventbus: invalid event type")

	// ErrNonPointerType 事件类型须以指针标识
	ErrNonPointerType = errors.New("eventbus: event type must be a pointer")

	// ErrTypeMismatch 发射的事件与发射器类型不符
	ErrTypeMismatch = errors.New("eventbus: event type mismatch")
)
