// Package interfaces 定义 netplug 公共接口
//
// 本文件定义引擎相关接口：解码器、处理器与只读统计。
package interfaces

import "github.com/dep2p/go-netplug/pkg/types"

// Decoder 消息解码器
type Decoder interface {
	// Decode 从 buf 的可读区间解码一条消息
	//
	// 数据不足时返回 (nil, nil) 且不移动 position。
	Decode(buf *types.Buffer, s Session) (any, error)
}

// Encoder 消息编码器
type Encoder interface {
	Encode(msg any) ([]byte, error)
}

// Processor 消息处理器
type Processor interface {
	// Process 处理一条已通过插件预处理的消息，返回错误产生 PROCESS_EXCEPTION
	Process(s Session, msg any) error
}

// ProcessorFunc 函数适配器
type ProcessorFunc func(s Session, msg any) error

// Process 实现 Processor
func (f ProcessorFunc) Process(s Session, msg any) error { return f(s, msg) }

// StatsProvider 引擎只读统计源
type StatsProvider interface {
	Stats() types.EngineStats
}
