package config

import (
	"fmt"
	"time"
)

// TLS 角色
const (
	TLSRoleServer = "server"
	TLSRoleClient = "client"
)

// 客户端认证模式
const (
	ClientAuthNone     = "none"
	ClientAuthOptional = "optional"
	ClientAuthRequired = "required"
)

// TLSConfig 安全通道配置
//
// 证书来源优先级：CertFile/KeyFile > KeystoreFile (PKCS#12) > 自签名。
type TLSConfig struct {
	// Enable 是否启用
	Enable bool `json:"enable"`

	// Role 握手角色：server 或 client
	Role string `json:"role"`

	// CertFile PEM 证书文件
	CertFile string `json:"cert_file,omitempty"`

	// KeyFile PEM 私钥文件
	KeyFile string `json:"key_file,omitempty"`

	// KeystoreFile PKCS#12 证书库
	KeystoreFile string `json:"keystore_file,omitempty"`

	// KeystorePassword 证书库口令
	KeystorePassword string `json:"keystore_password,omitempty"`

	// CAFile 用于验证对端证书的 CA（PEM）
	CAFile string `json:"ca_file,omitempty"`

	// ClientAuth 客户端认证模式：none, optional, required
	ClientAuth string `json:"client_auth"`

	// ServerName 客户端角色校验的服务端名称
	ServerName string `json:"server_name,omitempty"`

	// InsecureSkipVerify 客户端角色跳过服务端证书验证（仅测试）
	InsecureSkipVerify bool `json:"insecure_skip_verify,omitempty"`

	// MinVersion 最低 TLS 版本："1.2" 或 "1.3"
	MinVersion string `json:"min_version"`

	// HandshakeTimeout 握手超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// SelfSignedValidity 自签名证书有效期
	SelfSignedValidity Duration `json:"self_signed_validity"`
}

// DefaultTLSConfig 返回默认 TLS 配置
func DefaultTLSConfig() TLSConfig {
	return TLSConfig{
		Enable:             false,
		Role:               TLSRoleServer,
		ClientAuth:         ClientAuthNone,
		MinVersion:         "1.2",
		HandshakeTimeout:   Duration(10 * time.Second),
		SelfSignedValidity: Duration(365 * 24 * time.Hour),
	}
}

// Validate 验证 TLS 配置
func (c TLSConfig) Validate() error {
	switch c.Role {
	case TLSRoleServer, TLSRoleClient:
	default:
		return fmt.Errorf("%w: tls.role %q", ErrInvalidConfig, c.Role)
	}
	switch c.ClientAuth {
	case ClientAuthNone, ClientAuthOptional, ClientAuthRequired:
	default:
		return fmt.Errorf("%w: tls.client_auth %q", ErrInvalidConfig, c.ClientAuth)
	}
	switch c.MinVersion {
	case "1.2", "1.3":
	default:
		return fmt.Errorf("%w: tls.min_version %q", ErrInvalidConfig, c.MinVersion)
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("%w: tls.cert_file and tls.key_file must be set together", ErrInvalidConfig)
	}
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("%w: tls.handshake_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
