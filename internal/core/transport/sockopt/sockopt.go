package sockopt

import (
	"fmt"
	"sync/atomic"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	"github.com/dep2p/go-netplug/internal/util/logger"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

var log = logger.Logger("sockopt")

// Plugin 套接字调优插件
type Plugin struct {
	pipeline.Base

	settings []setting

	applied atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
}

var _ pkgif.Plugin = (*Plugin)(nil)

// New 创建套接字调优插件
func New(cfg Config) (*Plugin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Plugin{
		Base:     pipeline.NewBase(config.PluginSocket),
		settings: cfg.effective(),
	}, nil
}

// OnAccept 应用套接字选项，通道原样返回
func (p *Plugin) OnAccept(ch pkgif.Channel) (pkgif.Channel, error) {
	conn, ok := channel.NetConnOf(ch)
	if !ok {
		p.skipped.Add(1)
		log.Debug("channel has no socket, skipping", "remote", ch.RemoteAddr())
		return ch, nil
	}

	for _, s := range p.settings {
		if err := apply(conn, s.opt, s.value); err != nil {
			p.failed.Add(1)
			log.Warn("set socket option failed",
				"option", string(s.opt),
				"value", s.value,
				"remote", ch.RemoteAddr(),
				"err", err)
			continue
		}
		p.applied.Add(1)
	}
	return ch, nil
}

// Settings 返回生效的选项（含默认值）
func (p *Plugin) Settings() map[string]int {
	out := make(map[string]int, len(p.settings))
	for _, s := range p.settings {
		out[string(s.opt)] = s.value
	}
	return out
}

// Stats 返回 (成功设置数, 失败数, 跳过的连接数)
func (p *Plugin) Stats() (applied, failed, skipped int64) {
	return p.applied.Load(), p.failed.Load(), p.skipped.Load()
}

func unsupported(what string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(what, args...))
}
