// Package types 定义 netplug 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 netplug 内部包。
//
// # 文件组织
//
//   - enums.go   - StateStatus, IODirection, SocketOption
//   - buffer.go  - Buffer 读写缓冲区（position/limit 语义）
//   - events.go  - 事件总线上传递的事件类型
//   - stats.go   - TrafficSnapshot, EngineStats
//   - errors.go  - 公共错误定义
package types
