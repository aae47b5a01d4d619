package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

func TestModule_Lifecycle(t *testing.T) {
	var bus pkgif.EventBus

	app := fxtest.New(t,
		Module(),
		fx.Populate(&bus),
	)
	app.RequireStart()
	require.NotNil(t, bus)

	sub, err := bus.Subscribe(new(types.EvtSessionState))
	require.NoError(t, err)

	require.NoError(t, app.Stop(context.Background()))

	_, ok := <-sub.Out()
	assert.False(t, ok, "stopping the app closes subscriptions")
}

func TestModule_Metadata(t *testing.T) {
	assert.Equal(t, "eventbus", Name)
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Description)
}
