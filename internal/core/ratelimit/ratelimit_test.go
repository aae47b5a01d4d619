package ratelimit

import (
	"errors"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/internal/core/scheduler"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

type completion struct {
	n   int
	err error
	at  time.Time
}

func newLimited(t *testing.T, cfg Config) (*Limiter, *scheduler.Manual, *channel.Fake, pkgif.Channel) {
	t.Helper()
	sched := scheduler.NewManual()
	l, err := New(cfg, sched)
	require.NoError(t, err)

	fake := channel.NewFake("10.0.0.1:4000")
	ch, err := l.OnAccept(fake)
	require.NoError(t, err)
	return l, sched, fake, ch
}

func readInto(ch pkgif.Channel, sched *scheduler.Manual, size int, out *[]completion) {
	ch.Read(types.NewBuffer(size), func(n int, err error) {
		*out = append(*out, completion{n, err, sched.Now()})
	})
}

// ============================================================================
//                              窗口算法
// ============================================================================

func TestLimiter_ThreeReadsAgainstOneWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadLimit = 1000
	l, sched, fake, ch := newLimited(t, cfg)
	start := sched.Now()

	var done []completion
	readInto(ch, sched, 600, &done)
	readInto(ch, sched, 600, &done)
	readInto(ch, sched, 600, &done)

	require.Len(t, done, 2)
	assert.Equal(t, 600, done[0].n)
	assert.Equal(t, 400, done[1].n)
	assert.Equal(t, 1, sched.Pending())

	reads, _ := fake.Calls()
	assert.Equal(t, 2, reads)

	sched.Advance(999 * time.Millisecond)
	require.Len(t, done, 2)

	sched.Advance(time.Millisecond)
	require.Len(t, done, 3)
	assert.Equal(t, 600, done[2].n)
	assert.Equal(t, start.Add(time.Second), done[2].at)

	st := l.Stats()
	assert.Equal(t, int64(1), st.Clipped)
	assert.Equal(t, int64(1), st.Deferred)
}

func TestLimiter_ClipRestoresBufferLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadLimit = 100
	_, _, _, ch := newLimited(t, cfg)

	buf := types.NewBuffer(300)
	var got int
	ch.Read(buf, func(n int, err error) {
		require.NoError(t, err)
		got = n
	})
	assert.Equal(t, 100, got)
	assert.Equal(t, 100, buf.Position())
	assert.Equal(t, 300, buf.Limit())
}

func TestLimiter_WindowNeverExceeded(t *testing.T) {
	const limit = 1000
	cfg := DefaultConfig()
	cfg.ReadLimit = limit
	_, sched, _, ch := newLimited(t, cfg)
	lc := ch.(*limitedChannel)

	rng := rand.New(rand.NewSource(7))
	perWindow := map[time.Time]int64{}
	var starts []time.Time

	for i := 0; i < 200; i++ {
		pending := true
		ch.Read(types.NewBuffer(1+rng.Intn(700)), func(n int, err error) {
			require.NoError(t, err)
			start, _ := lc.read.snapshot()
			if len(starts) == 0 || !starts[len(starts)-1].Equal(start) {
				starts = append(starts, start)
			}
			perWindow[start] += int64(n)
			pending = false
		})
		for pending {
			sched.Advance(time.Duration(1+rng.Intn(300)) * time.Millisecond)
		}
		sched.Advance(time.Duration(rng.Intn(200)) * time.Millisecond)
	}

	for start, total := range perWindow {
		assert.LessOrEqual(t, total, int64(limit), "window %s", start)
	}
	for i := 1; i < len(starts); i++ {
		assert.True(t, starts[i].After(starts[i-1]), "window starts must increase")
	}
	assert.Greater(t, len(starts), 10)
}

func TestLimiter_WriteDirection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WriteLimit = 10
	_, sched, fake, ch := newLimited(t, cfg)

	var done []completion
	write := func(s string) {
		ch.Write(types.WrapBuffer([]byte(s)), func(n int, err error) {
			done = append(done, completion{n, err, sched.Now()})
		})
	}

	write("0123456789abc")
	require.Len(t, done, 1)
	assert.Equal(t, 10, done[0].n)

	write("abc")
	require.Len(t, done, 1)
	sched.Advance(time.Second)
	require.Len(t, done, 2)
	assert.Equal(t, "0123456789abc", string(fake.Written()))
}

func TestLimiter_ReadUnlimitedWhenOnlyWriteLimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WriteLimit = 10
	_, sched, _, ch := newLimited(t, cfg)

	var done []completion
	readInto(ch, sched, 5000, &done)
	require.Len(t, done, 1)
	assert.Equal(t, 5000, done[0].n)
}

func TestLimiter_ZeroSizeBypasses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadLimit = 10
	_, sched, _, ch := newLimited(t, cfg)

	var done []completion
	readInto(ch, sched, 10, &done)
	readInto(ch, sched, 0, &done)
	require.Len(t, done, 2)
	assert.Equal(t, 0, done[1].n)
	assert.Zero(t, sched.Pending())
}

func TestLimiter_DisabledReturnsSameChannel(t *testing.T) {
	l, err := New(DefaultConfig(), scheduler.NewManual())
	require.NoError(t, err)

	fake := channel.NewFake("10.0.0.1:4000")
	ch, err := l.OnAccept(fake)
	require.NoError(t, err)
	assert.Same(t, fake, ch)
}

func TestLimiter_RetryDroppedAfterClose(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadLimit = 10
	l, sched, fake, ch := newLimited(t, cfg)

	var done []completion
	readInto(ch, sched, 10, &done)
	readInto(ch, sched, 10, &done)
	require.Len(t, done, 1)

	require.NoError(t, ch.Close())
	sched.Advance(2 * time.Second)

	assert.Len(t, done, 1)
	reads, _ := fake.Calls()
	assert.Equal(t, 1, reads)
	assert.Equal(t, int64(1), l.Stats().Dropped)
}

func TestLimiter_BlockingConnReleasedOnClose(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadLimit = 100
	_, sched, _, ch := newLimited(t, cfg)
	conn := channel.NewConn(ch)

	n, err := conn.Read(make([]byte, 100))
	require.NoError(t, err)
	require.Equal(t, 100, n)

	done := make(chan error, 1)
	go func() {
		_, err := conn.Read(make([]byte, 100))
		done <- err
	}()
	require.Eventually(t, func() bool { return sched.Pending() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, conn.Close())
	sched.Advance(2 * time.Second)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, net.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("blocking Read did not return after Close")
	}
}

func TestLimiter_ErrorsForwardedVerbatim(t *testing.T) {
	boom := errors.New("connection reset")
	cfg := DefaultConfig()
	cfg.ReadLimit = 10
	_, sched, fake, ch := newLimited(t, cfg)
	fake.WithReadError(boom)

	var done []completion
	readInto(ch, sched, 50, &done)
	require.Len(t, done, 1)
	assert.Same(t, boom, done[0].err)
	assert.Zero(t, done[0].n)

	_, consumed := ch.(*limitedChannel).read.snapshot()
	assert.Zero(t, consumed)
}

func TestWindow_CommitRollsAfterFullWindow(t *testing.T) {
	t0 := time.Unix(1000, 0)
	w := newWindow(100, time.Second, 10*time.Millisecond, t0)

	n, _ := w.reserve(t0, 80)
	require.Equal(t, 80, n)
	w.commit(t0.Add(1500*time.Millisecond), 80)

	start, consumed := w.snapshot()
	assert.Equal(t, t0.Add(1500*time.Millisecond), start)
	assert.Equal(t, int64(80), consumed)
}

func TestWindow_SlackOpensNewWindow(t *testing.T) {
	t0 := time.Unix(1000, 0)
	w := newWindow(100, time.Second, 10*time.Millisecond, t0)

	n, _ := w.reserve(t0, 100)
	require.Equal(t, 100, n)
	w.commit(t0, 100)

	n, wait := w.reserve(t0.Add(500*time.Millisecond), 1)
	assert.Zero(t, n)
	assert.Equal(t, 500*time.Millisecond, wait)

	n, _ = w.reserve(t0.Add(995*time.Millisecond), 1)
	assert.Equal(t, 1, n)
}

// ============================================================================
//                              配置与模块
// ============================================================================

func TestNew_Validation(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrNoScheduler)

	cfg := DefaultConfig()
	cfg.Slack = cfg.Window
	_, err = New(cfg, scheduler.NewManual())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLimiter_RealScheduler(t *testing.T) {
	sched, err := scheduler.New(scheduler.DefaultConfig())
	require.NoError(t, err)
	defer sched.Stop()

	cfg := DefaultConfig()
	cfg.ReadLimit = 100
	cfg.Window = 50 * time.Millisecond
	cfg.Slack = time.Millisecond
	l, err := New(cfg, sched)
	require.NoError(t, err)

	ch, err := l.OnAccept(channel.NewFake("10.0.0.1:4000"))
	require.NoError(t, err)

	done := make(chan int, 3)
	for i := 0; i < 3; i++ {
		ch.Read(types.NewBuffer(100), func(n int, err error) { done <- n })
		select {
		case n := <-done:
			assert.Equal(t, 100, n)
		case <-time.After(2 * time.Second):
			t.Fatal("deferred read never completed")
		}
	}
	assert.GreaterOrEqual(t, l.Stats().Deferred, int64(1))
}

func TestModule(t *testing.T) {
	u := config.NewConfig()
	u.RateLimit.Enable = true
	u.RateLimit.ReadLimit = 2048

	var l *Limiter
	app := fxtest.New(t,
		fx.Supply(u),
		fx.Provide(func() pkgif.Scheduler { return scheduler.NewManual() }),
		Module(),
		fx.Populate(&l),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, l)
	assert.Equal(t, int64(2048), l.cfg.ReadLimit)
	assert.Equal(t, config.PluginRateLimit, l.Name())
}
