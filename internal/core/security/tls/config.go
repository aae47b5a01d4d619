package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/dep2p/go-netplug/config"
)

// Config 安全通道配置
type Config struct {
	// Role 握手角色，config.TLSRoleServer 或 config.TLSRoleClient
	Role string

	// Certificate 直接提供的证书，优先于文件
	Certificate *tls.Certificate

	CertFile         string
	KeyFile          string
	KeystoreFile     string
	KeystorePassword string

	// CAPool 对端证书信任池，优先于 CAFile
	CAPool *x509.CertPool
	CAFile string

	// ClientAuth config.ClientAuthNone / Optional / Required
	ClientAuth string

	ServerName         string
	InsecureSkipVerify bool

	MinVersion       uint16
	HandshakeTimeout time.Duration

	// SelfSignedValidity 自签名证书有效期，0 表示不自动生成
	SelfSignedValidity time.Duration
	// SelfSignedHosts 自签名证书的主机名/IP
	SelfSignedHosts []string
}

// DefaultConfig 返回默认配置（服务端、无客户端认证、自签名）
func DefaultConfig() Config {
	d := config.DefaultTLSConfig()
	return Config{
		Role:               d.Role,
		ClientAuth:         d.ClientAuth,
		MinVersion:         tls.VersionTLS12,
		HandshakeTimeout:   d.HandshakeTimeout.Duration(),
		SelfSignedValidity: d.SelfSignedValidity.Duration(),
		SelfSignedHosts:    []string{"localhost", "127.0.0.1", "::1"},
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	switch c.Role {
	case config.TLSRoleServer, config.TLSRoleClient:
	default:
		return fmt.Errorf("%w: role %q", ErrInvalidConfig, c.Role)
	}
	switch c.ClientAuth {
	case config.ClientAuthNone, config.ClientAuthOptional, config.ClientAuthRequired:
	default:
		return fmt.Errorf("%w: client auth %q", ErrInvalidConfig, c.ClientAuth)
	}
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("%w: handshake timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	t := cfg.TLS
	c.Role = t.Role
	c.CertFile, c.KeyFile = t.CertFile, t.KeyFile
	c.KeystoreFile, c.KeystorePassword = t.KeystoreFile, t.KeystorePassword
	c.CAFile = t.CAFile
	c.ClientAuth = t.ClientAuth
	c.ServerName = t.ServerName
	c.InsecureSkipVerify = t.InsecureSkipVerify
	if t.MinVersion == "1.3" {
		c.MinVersion = tls.VersionTLS13
	}
	if t.HandshakeTimeout > 0 {
		c.HandshakeTimeout = t.HandshakeTimeout.Duration()
	}
	c.SelfSignedValidity = t.SelfSignedValidity.Duration()
	return c
}

// certificate 按优先级解析本地证书，可能为 nil
func (c Config) certificate() (*tls.Certificate, error) {
	switch {
	case c.Certificate != nil:
		return c.Certificate, nil
	case c.CertFile != "":
		return LoadKeyPair(c.CertFile, c.KeyFile)
	case c.KeystoreFile != "":
		return LoadKeystore(c.KeystoreFile, c.KeystorePassword)
	case c.Role == config.TLSRoleServer && c.SelfSignedValidity > 0:
		log.Warn("no certificate configured, generating a self-signed certificate")
		return GenerateSelfSigned(c.SelfSignedValidity, c.SelfSignedHosts...)
	}
	return nil, nil
}

func (c Config) pool() (*x509.CertPool, error) {
	if c.CAPool != nil {
		return c.CAPool, nil
	}
	if c.CAFile != "" {
		return LoadCertPool(c.CAFile)
	}
	return nil, nil
}

// Build 生成 crypto/tls 配置
func (c Config) Build() (*tls.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cert, err := c.certificate()
	if err != nil {
		return nil, err
	}
	pool, err := c.pool()
	if err != nil {
		return nil, err
	}

	tc := &tls.Config{MinVersion: c.MinVersion}
	if cert != nil {
		tc.Certificates = []tls.Certificate{*cert}
	}

	if c.Role == config.TLSRoleClient {
		tc.RootCAs = pool
		tc.ServerName = c.ServerName
		tc.InsecureSkipVerify = c.InsecureSkipVerify
		return tc, nil
	}

	if cert == nil {
		return nil, ErrNoCertificate
	}
	tc.ClientCAs = pool
	tc.ClientAuth = clientAuthType(c.ClientAuth, pool != nil)
	return tc, nil
}

// clientAuthType 映射客户端认证模式；没有信任池时只要求出示证书而不验证链
func clientAuthType(mode string, verify bool) tls.ClientAuthType {
	switch mode {
	case config.ClientAuthOptional:
		if verify {
			return tls.VerifyClientCertIfGiven
		}
		return tls.RequestClientCert
	case config.ClientAuthRequired:
		if verify {
			return tls.RequireAndVerifyClientCert
		}
		return tls.RequireAnyClientCert
	default:
		return tls.NoClientCert
	}
}
