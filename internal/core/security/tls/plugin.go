package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync/atomic"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

var log = logger.Logger("tls")

// Plugin 安全通道插件
type Plugin struct {
	pipeline.Base

	cfg       Config
	tlsConfig *tls.Config

	handshakes atomic.Int64
	failures   atomic.Int64
}

var _ pkgif.Plugin = (*Plugin)(nil)

// New 创建安全通道插件
func New(cfg Config) (*Plugin, error) {
	tc, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Plugin{
		Base:      pipeline.NewBase(config.PluginTLS),
		cfg:       cfg,
		tlsConfig: tc,
	}, nil
}

// TLSConfig 返回生效的 crypto/tls 配置副本
func (p *Plugin) TLSConfig() *tls.Config { return p.tlsConfig.Clone() }

// OnAccept 完成握手并返回明文通道
//
// 在引擎的接入 goroutine 中阻塞直到握手完成、失败或超时。
func (p *Plugin) OnAccept(ch pkgif.Channel) (pkgif.Channel, error) {
	raw := channel.NewConn(ch)

	var conn *tls.Conn
	if p.cfg.Role == config.TLSRoleClient {
		conn = tls.Client(raw, p.tlsConfig)
	} else {
		conn = tls.Server(raw, p.tlsConfig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.HandshakeTimeout)
	defer cancel()

	if err := conn.HandshakeContext(ctx); err != nil {
		p.failures.Add(1)
		log.Debug("handshake failed", "remote", ch.RemoteAddr(), "role", p.cfg.Role, "err", err)
		return nil, fmt.Errorf("%w: %v: %w", ErrHandshake, ch.RemoteAddr(), err)
	}

	p.handshakes.Add(1)
	state := conn.ConnectionState()
	log.Debug("handshake complete",
		"remote", ch.RemoteAddr(),
		"version", tls.VersionName(state.Version),
		"cipher", tls.CipherSuiteName(state.CipherSuite),
		"peer_certs", len(state.PeerCertificates))

	return newSecureChannel(conn, ch), nil
}

// Stats 返回 (成功握手数, 失败握手数)
func (p *Plugin) Stats() (handshakes, failures int64) {
	return p.handshakes.Load(), p.failures.Load()
}
