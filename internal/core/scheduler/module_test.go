package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-netplug/config"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

func TestModule_UsesUnifiedConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Scheduler.Workers = 3

	var s pkgif.Scheduler
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&s),
	)
	app.RequireStart()
	require.NotNil(t, s)

	done := make(chan struct{})
	s.ScheduleOnce(time.Millisecond, func() { close(done) })
	<-done

	app.RequireStop()
}

func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.Scheduler.Workers = 7
	assert.Equal(t, 7, ConfigFromUnified(cfg).Workers)
}
