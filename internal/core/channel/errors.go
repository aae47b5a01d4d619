package channel

import "errors"

var (
	// ErrReadPending 已有未完成的读操作
	ErrReadPending = errors.New("channel: read already pending")

	// ErrWritePending 已有未完成的写操作
	ErrWritePending = errors.New("channel: write already pending")
)
