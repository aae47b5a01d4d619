package liveness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	"github.com/dep2p/go-netplug/internal/core/scheduler"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

func newService(t *testing.T, rate, timeout time.Duration, opts ...Option) (*Service, *scheduler.Manual) {
	t.Helper()
	sched := scheduler.NewManual()
	svc, err := NewService(Config{HeartRate: rate, Timeout: timeout}, sched, opts...)
	require.NoError(t, err)
	return svc, sched
}

func open(svc *Service, id string) *pipeline.StubSession {
	sess := pipeline.NewStubSession(id)
	svc.OnStateEvent(sess, types.StateNewSession, nil)
	return sess
}

// ============================================================================
//                              构造
// ============================================================================

func TestNewService_RejectsRateNotBelowTimeout(t *testing.T) {
	sched := scheduler.NewManual()

	_, err := NewService(Config{HeartRate: 10 * time.Second, Timeout: 10 * time.Second}, sched)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewService(Config{HeartRate: 20 * time.Second, Timeout: 10 * time.Second}, sched)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewService(Config{HeartRate: 0}, sched)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewService(Config{HeartRate: time.Second}, nil)
	assert.ErrorIs(t, err, ErrNoScheduler)

	_, err = NewService(Config{HeartRate: 10 * time.Second}, sched)
	assert.NoError(t, err)
}

// ============================================================================
//                              超时
// ============================================================================

func TestService_IdleSessionClosedOnce(t *testing.T) {
	svc, sched := newService(t, 5*time.Second, 12*time.Second, LineProtocol("PING", "PONG"))
	sess := open(svc, "s1")

	sched.Advance(13 * time.Second)
	assert.Empty(t, sess.Closes())

	sched.Advance(2 * time.Second)
	assert.Equal(t, []bool{true}, sess.Closes())

	sched.Advance(time.Minute)
	assert.Len(t, sess.Closes(), 1)
	assert.Zero(t, sched.Pending())

	st := svc.Stats()
	assert.Equal(t, int64(1), st.Timeouts)
	assert.Equal(t, int64(1), st.Probes)
	assert.Zero(t, st.Tracked)
}

func TestService_RepliesKeepSessionOpen(t *testing.T) {
	svc, sched := newService(t, 5*time.Second, 12*time.Second, LineProtocol("PING", "PONG"))
	sess := open(svc, "s1")

	sched.Advance(4 * time.Second)
	assert.False(t, svc.OnMessage(sess, "PONG"))
	sched.Advance(5 * time.Second)
	assert.False(t, svc.OnMessage(sess, "PONG"))

	sched.Advance(11 * time.Second)
	assert.Empty(t, sess.Closes())
	assert.True(t, sess.IsValid())

	sched.Advance(5 * time.Second)
	assert.Len(t, sess.Closes(), 1)
}

func TestService_ContinuousActivityNeverCloses(t *testing.T) {
	svc, sched := newService(t, time.Second, 3*time.Second)
	sess := open(svc, "s1")

	for i := 0; i < 100; i++ {
		sched.Advance(2 * time.Second)
		assert.True(t, svc.OnMessage(sess, "data"))
	}
	assert.Empty(t, sess.Closes())
	assert.Equal(t, int64(1), svc.Stats().Tracked)
}

func TestService_ProbeOnlyWhenIdle(t *testing.T) {
	svc, sched := newService(t, 5*time.Second, 0, LineProtocol("PING", "PONG"))
	sess := open(svc, "s1")

	sched.Advance(5 * time.Second)
	assert.Empty(t, sess.Written())

	sched.Advance(5 * time.Second)
	require.Len(t, sess.Written(), 1)
	assert.Equal(t, "PING\n", string(sess.Written()[0]))
}

func TestService_ZeroTimeoutNeverCloses(t *testing.T) {
	svc, sched := newService(t, time.Second, 0, LineProtocol("PING", ""))
	sess := open(svc, "s1")

	sched.Advance(time.Hour)
	assert.Empty(t, sess.Closes())
	assert.Greater(t, svc.Stats().Probes, int64(3000))
}

func TestService_CustomTimeoutHandler(t *testing.T) {
	var timedOut []string
	svc, sched := newService(t, time.Second, 2*time.Second,
		WithTimeoutHandler(func(s pkgif.Session) { timedOut = append(timedOut, s.ID()) }))
	sess := open(svc, "s1")

	sched.Advance(4 * time.Second)
	assert.Equal(t, []string{"s1"}, timedOut)
	assert.Empty(t, sess.Closes())
}

func TestService_ProbeErrorsAreNotFatal(t *testing.T) {
	svc, sched := newService(t, time.Second, 0, WithProbe(func(pkgif.Session) error {
		return errors.New("write failed")
	}))
	open(svc, "s1")

	sched.Advance(10 * time.Second)
	assert.Greater(t, svc.Stats().Probes, int64(5))
}

// ============================================================================
//                              会话生命周期
// ============================================================================

func TestService_SessionClosedStopsChecks(t *testing.T) {
	svc, sched := newService(t, time.Second, 3*time.Second)
	sess := open(svc, "s1")
	require.Equal(t, 1, sched.Pending())

	svc.OnStateEvent(sess, types.StateSessionClosed, nil)
	assert.Zero(t, sched.Pending())
	assert.Zero(t, svc.Stats().Tracked)

	sched.Advance(time.Minute)
	assert.Empty(t, sess.Closes())
}

func TestService_InvalidSessionDropsBookkeeping(t *testing.T) {
	svc, sched := newService(t, time.Second, 3*time.Second)
	sess := open(svc, "s1")

	sess.Invalidate()
	sched.Advance(time.Second)

	assert.Zero(t, svc.Stats().Tracked)
	assert.Zero(t, sched.Pending())
	assert.Empty(t, sess.Closes())
}

func TestService_TimeoutCloseThenClosedEvent(t *testing.T) {
	svc, sched := newService(t, time.Second, 2*time.Second)
	sess := open(svc, "s1")
	sess.OnClose(func(bool) { svc.OnStateEvent(sess, types.StateSessionClosed, nil) })

	sched.Advance(5 * time.Second)
	assert.Len(t, sess.Closes(), 1)
	assert.Zero(t, svc.Stats().Tracked)
}

func TestService_HeartbeatMessagesFiltered(t *testing.T) {
	svc, _ := newService(t, time.Second, 0, LineProtocol("PING", "PONG"))
	sess := open(svc, "s1")

	assert.False(t, svc.OnMessage(sess, "PING"))
	require.Len(t, sess.Written(), 1)
	assert.Equal(t, "PONG\n", string(sess.Written()[0]))

	assert.False(t, svc.OnMessage(sess, "PONG"))
	assert.Len(t, sess.Written(), 1)

	assert.True(t, svc.OnMessage(sess, "hello"))
	assert.True(t, svc.OnMessage(sess, []byte("PING")))
}

func TestService_Stop(t *testing.T) {
	svc, sched := newService(t, time.Second, 0)
	open(svc, "a")
	open(svc, "b")
	require.Equal(t, 2, sched.Pending())

	require.NoError(t, svc.Stop())
	assert.Zero(t, sched.Pending())
	assert.Zero(t, svc.Stats().Tracked)
}

// ============================================================================
//                              Fx 模块
// ============================================================================

func TestModule(t *testing.T) {
	u := config.NewConfig()
	u.Heartbeat.HeartRate = config.Duration(time.Second)
	u.Heartbeat.Timeout = config.Duration(5 * time.Second)

	sched := scheduler.NewManual()
	var svc *Service
	app := fxtest.New(t,
		fx.Supply(u),
		fx.Provide(func() pkgif.Scheduler { return sched }),
		Module(),
		fx.Populate(&svc),
	)
	app.RequireStart()

	sess := open(svc, "s1")
	sched.Advance(2 * time.Second)
	require.Len(t, sess.Written(), 1)
	assert.Equal(t, "PING\n", string(sess.Written()[0]))

	app.RequireStop()
	assert.Zero(t, sched.Pending())
}

func TestModule_RejectsBadConfig(t *testing.T) {
	u := config.NewConfig()
	u.Heartbeat.HeartRate = config.Duration(10 * time.Second)
	u.Heartbeat.Timeout = config.Duration(5 * time.Second)

	app := fx.New(
		fx.NopLogger,
		fx.Supply(u),
		fx.Provide(func() pkgif.Scheduler { return scheduler.NewManual() }),
		Module(),
	)
	assert.ErrorIs(t, app.Err(), ErrInvalidConfig)
}
