package gater

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-netplug/pkg/types"
)

var (
	// ErrDenied 远端地址被规则拒绝
	ErrDenied = fmt.Errorf("gater: address denied: %w", types.ErrRejected)

	// ErrInvalidRule 规则无法解析
	ErrInvalidRule = errors.New("gater: invalid rule")
)
