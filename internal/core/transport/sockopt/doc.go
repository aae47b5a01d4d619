// Package sockopt 实现套接字调优插件
//
// 接入钩子把配置的 选项 → 取值 映射应用到连接的底层套接字上，
// 未显式配置时默认设置 TCP_NODELAY=1。
//
// 设置失败只记录日志，不拒绝连接；装饰链上找不到底层套接字
// （例如内存管道）时原样放行。
//
// 插件通常注册在流水线最前面，使后续插件看到已调优的连接。
package sockopt
