// Package channel 实现基于完成回调的异步通道
//
//   - NetChannel：在 net.Conn 之上的 Channel 实现，每个方向一个 I/O goroutine
//   - Wrapper：装饰器基类，插件嵌入后仅覆盖 Read/Write
//   - Conn：Channel 的阻塞式 net.Conn 视图（TLS 握手使用）
//   - Pipe：内存中的已连接通道对
package channel
