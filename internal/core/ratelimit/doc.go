// Package ratelimit 实现按连接的读写限速插件
//
// 读、写两个方向各自维护一个固定长度的时间窗口（默认 1 秒）与窗口内已用字节数。
// 每次读写把缓冲区截断到窗口剩余配额；配额耗尽时不执行 I/O，
// 而是通过共享调度器在窗口结束时重试同一次调用，调用栈立即返回。
//
// 重试触发时通道已关闭则静默放弃。底层 I/O 的结果原样转交调用者，
// 插件只改变操作发生的时机和单次传输的长度。
//
// 请求长度为 0 的操作不受限；限额 <= 0 的方向不限速。
package ratelimit
