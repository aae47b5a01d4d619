package tls

import "errors"

var (
	// ErrHandshake 握手失败
	ErrHandshake = errors.New("tls: handshake failed")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("tls: invalid config")

	// ErrNoCertificate 服务端角色缺少证书
	ErrNoCertificate = errors.New("tls: no certificate available")

	// ErrKeystore 证书库无法解析
	ErrKeystore = errors.New("tls: invalid keystore")
)
