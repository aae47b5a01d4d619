package sockopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/pkg/types"
)

func TestConfig_DefaultNoDelay(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"TCP_NODELAY": 1}, p.Settings())
}

func TestConfig_Override(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options[types.TCPNoDelay] = 0
	cfg.Options[types.SoRcvBuf] = 65536

	p, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"TCP_NODELAY": 0, "SO_RCVBUF": 65536}, p.Settings())
}

func TestConfig_UnknownOption(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options["SO_BOGUS"] = 1
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigFromUnified(t *testing.T) {
	u := config.NewConfig()
	u.Socket.Options = map[string]int{"SO_SNDBUF": 1 << 16}
	cfg := ConfigFromUnified(u)
	assert.Equal(t, 1<<16, cfg.Options[types.SoSndBuf])
}

func TestPlugin_PassesThroughWithoutSocket(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	fake := channel.NewFake("10.0.0.1:1234")
	out, err := p.OnAccept(fake)
	require.NoError(t, err)
	assert.Same(t, fake, out)

	_, _, skipped := p.Stats()
	assert.Equal(t, int64(1), skipped)
}

func TestPlugin_PipeIsNotRejected(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	a, b := channel.Pipe()
	defer a.Close()
	defer b.Close()

	out, err := p.OnAccept(a)
	require.NoError(t, err)
	assert.Same(t, a, out)

	_, failed, _ := p.Stats()
	assert.Equal(t, int64(1), failed)
}

func TestModule(t *testing.T) {
	var p *Plugin
	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module(),
		fx.Populate(&p),
	)
	app.RequireStart()
	defer app.RequireStop()
	require.NotNil(t, p)
	assert.Equal(t, config.PluginSocket, p.Name())
}
