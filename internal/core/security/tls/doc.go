// Package tls 实现安全通道插件
//
// 接入钩子在原始通道上完成 TLS 握手（服务端或客户端角色），
// 握手成功后返回的通道收发应用层明文，完成回调中的字节数为明文字节数。
// 握手失败或超时即拒绝连接，不会退化为明文。
//
// 证书来源：
//   - PEM 证书与私钥文件
//   - PKCS#12 证书库
//   - 自签名证书（未配置任何证书时生成，仅用于开发与测试）
//
// 客户端认证模式：none / optional / required。
package tls
