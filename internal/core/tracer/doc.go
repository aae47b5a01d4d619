// Package tracer 实现字节流追踪插件
//
// 装饰器在每次读写完成后，把本次实际传输的字节（读取自操作前的缓冲区位置）
// 复制一份交给观察者，再原样转交完成回调。观察者拿到的是副本，
// 修改它不影响传输的数据。
//
// 默认观察者在 debug 级别输出十六进制转储。
package tracer
