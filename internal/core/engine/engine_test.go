package engine

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/internal/core/eventbus"
	"github.com/dep2p/go-netplug/internal/core/gater"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

// recorder 记录收到的状态事件并可拒绝指定消息
type recorder struct {
	pipeline.Base

	mu     sync.Mutex
	events []types.StateStatus
	drop   string
	closed chan struct{}
}

func newRecorder() *recorder {
	return &recorder{Base: pipeline.NewBase("recorder"), closed: make(chan struct{})}
}

func (r *recorder) OnMessage(_ pkgif.Session, msg any) bool {
	return r.drop == "" || msg != r.drop
}

func (r *recorder) OnStateEvent(_ pkgif.Session, status types.StateStatus, _ error) {
	r.mu.Lock()
	r.events = append(r.events, status)
	r.mu.Unlock()
	if status == types.StateSessionClosed {
		close(r.closed)
	}
}

func (r *recorder) Events() []types.StateStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.StateStatus(nil), r.events...)
}

func (r *recorder) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case <-r.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("session was not closed")
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	return cfg
}

func startEngine(t *testing.T, cfg Config, plugins ...pkgif.Plugin) *Engine {
	t.Helper()
	e, err := New(cfg, pipeline.New(plugins...))
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop(context.Background()) })
	return e
}

func dial(t *testing.T, e *Engine) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", e.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	return conn
}

// pendingChannel 写操作挂起直到测试手动完成
type pendingChannel struct {
	*channel.Fake

	mu      sync.Mutex
	pending []func()
}

func (c *pendingChannel) Write(buf *types.Buffer, handler pkgif.CompletionHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, func() {
		n := buf.Remaining()
		buf.Advance(n)
		handler(n, nil)
	})
}

func (c *pendingChannel) completeWrite() bool {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return false
	}
	fn := c.pending[0]
	c.pending = c.pending[1:]
	c.mu.Unlock()
	fn()
	return true
}

// ============================================================================
//                              端到端
// ============================================================================

func TestEngine_Echo(t *testing.T) {
	rec := newRecorder()
	e := startEngine(t, testConfig(), rec)

	conn := dial(t, e)
	r := bufio.NewReader(conn)

	for _, line := range []string{"hello", "world"} {
		_, err := conn.Write([]byte(line + "\r\n"))
		require.NoError(t, err)
		got, err := r.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, line+"\n", got)
	}

	require.Eventually(t, func() bool { return e.Stats().ActiveSessions == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	rec.waitClosed(t)

	events := rec.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, types.StateNewSession, events[0])
	assert.Contains(t, events, types.StateInputShutdown)
	assert.Equal(t, types.StateSessionClosed, events[len(events)-1])

	require.Eventually(t, func() bool { return e.Stats().ActiveSessions == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), e.Stats().Accepted)
}

func TestEngine_BlacklistRejects(t *testing.T) {
	bl, err := gater.New(gater.DefaultConfig(), gater.DenyAddr("127.0.0.1"))
	require.NoError(t, err)
	rec := newRecorder()

	bus := eventbus.NewBus()
	sub, err := bus.Subscribe(new(types.EvtSessionState))
	require.NoError(t, err)
	em, err := bus.Emitter(new(types.EvtSessionState))
	require.NoError(t, err)

	cfg := testConfig()
	e, err := New(cfg, pipeline.New(bl, rec), WithEmitter(em))
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop(context.Background()) })

	conn := dial(t, e)
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)

	select {
	case raw := <-sub.Out():
		evt := raw.(types.EvtSessionState)
		assert.Equal(t, types.StateRejectAccept, evt.Status)
		assert.Empty(t, evt.SessionID)
		assert.ErrorIs(t, evt.Err, types.ErrRejected)
	case <-time.After(5 * time.Second):
		t.Fatal("no rejection event")
	}

	assert.Empty(t, rec.Events(), "rejected connection never becomes a session")
	assert.Equal(t, int64(1), e.Stats().AcceptRejected)
	assert.Equal(t, int64(0), e.Stats().Accepted)
	assert.Equal(t, int64(1), bl.Rejected())
}

func TestEngine_AcceptException(t *testing.T) {
	boom := errors.New("boom")
	failing := &acceptFailer{Base: pipeline.NewBase("failing"), err: boom}

	bus := eventbus.NewBus()
	sub, err := bus.Subscribe(new(types.EvtSessionState))
	require.NoError(t, err)
	em, err := bus.Emitter(new(types.EvtSessionState))
	require.NoError(t, err)

	e, err := New(testConfig(), pipeline.New(failing), WithEmitter(em))
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop(context.Background()) })

	dial(t, e)

	select {
	case raw := <-sub.Out():
		evt := raw.(types.EvtSessionState)
		assert.Equal(t, types.StateAcceptException, evt.Status)
		assert.ErrorIs(t, evt.Err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("no accept exception event")
	}
	assert.Equal(t, int64(0), e.Stats().AcceptRejected)
}

type acceptFailer struct {
	pipeline.Base
	err error
}

func (a *acceptFailer) OnAccept(pkgif.Channel) (pkgif.Channel, error) { return nil, a.err }

func TestEngine_MessageRejected(t *testing.T) {
	rec := newRecorder()
	rec.drop = "secret"
	e := startEngine(t, testConfig(), rec)

	conn := dial(t, e)
	_, err := conn.Write([]byte("secret\nvisible\n"))
	require.NoError(t, err)

	got, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "visible\n", got)
	assert.Equal(t, int64(1), e.Stats().MessagesRejected)
}

func TestEngine_LineTooLong(t *testing.T) {
	cfg := testConfig()
	cfg.ReadBufferSize = 16
	cfg.MaxLineLength = 16
	rec := newRecorder()
	e := startEngine(t, cfg, rec)

	conn := dial(t, e)
	_, err := conn.Write([]byte(strings.Repeat("a", 64)))
	require.NoError(t, err)

	rec.waitClosed(t)
	assert.Equal(t, []types.StateStatus{
		types.StateNewSession,
		types.StateDecodeException,
		types.StateSessionClosed,
	}, rec.Events())
}

func TestEngine_StopClosesSessions(t *testing.T) {
	rec := newRecorder()
	cfg := testConfig()
	e, err := New(cfg, pipeline.New(rec))
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))

	conn := dial(t, e)
	require.Eventually(t, func() bool { return e.Stats().ActiveSessions == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, e.Stop(context.Background()))
	rec.waitClosed(t)

	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)
	assert.ErrorIs(t, e.Serve(nil), ErrEngineClosed)
	assert.NoError(t, e.Stop(context.Background()), "second stop is a no-op")
}

func TestEngine_StartTwice(t *testing.T) {
	e := startEngine(t, testConfig())
	assert.ErrorIs(t, e.Start(context.Background()), ErrAlreadyStarted)
}

// ============================================================================
//                              会话
// ============================================================================

func newTestSession(t *testing.T, ch pkgif.Channel, plugins ...pkgif.Plugin) (*Engine, *session) {
	t.Helper()
	e, err := New(DefaultConfig(), pipeline.New(plugins...))
	require.NoError(t, err)
	s := newSession(e, "s1", ch)
	require.True(t, e.addSession(s))
	return e, s
}

func TestSession_DecodeAcrossReads(t *testing.T) {
	fake := channel.NewFake("10.0.0.2:5000").WithSource([]byte("one\ntw")).WithMaxPerOp(3)
	rec := newRecorder()
	e, s := newTestSession(t, fake, rec)

	s.fire(types.StateNewSession, nil)
	s.read()

	assert.Equal(t, "one\n", string(fake.Written()), "partial line is never delivered")
	assert.Equal(t, []types.StateStatus{
		types.StateNewSession,
		types.StateInputShutdown,
		types.StateSessionClosed,
	}, rec.Events())
	assert.False(t, s.IsValid())
	assert.False(t, fake.IsOpen())
	assert.Equal(t, int64(0), e.Stats().ActiveSessions)
}

func TestSession_InputException(t *testing.T) {
	fake := channel.NewFake("10.0.0.2:5000").WithReadError(errors.New("reset"))
	rec := newRecorder()
	_, s := newTestSession(t, fake, rec)

	s.read()
	assert.Equal(t, []types.StateStatus{types.StateInputException, types.StateSessionClosed}, rec.Events())
}

func TestSession_GracefulCloseFlushes(t *testing.T) {
	ch := &pendingChannel{Fake: channel.NewFake("10.0.0.2:5000")}
	rec := newRecorder()
	_, s := newTestSession(t, ch, rec)

	require.NoError(t, s.Write([]byte("a")))
	require.NoError(t, s.Write([]byte("b")))

	require.NoError(t, s.Close(false))
	assert.False(t, s.IsValid())
	assert.ErrorIs(t, s.Write([]byte("c")), types.ErrSessionClosed)
	assert.Equal(t, []types.StateStatus{types.StateSessionClosing}, rec.Events())

	require.True(t, ch.completeWrite())
	assert.Equal(t, []types.StateStatus{types.StateSessionClosing}, rec.Events())
	require.True(t, ch.completeWrite())

	assert.Equal(t, []types.StateStatus{types.StateSessionClosing, types.StateSessionClosed}, rec.Events())
	assert.False(t, ch.IsOpen())
}

func TestSession_ImmediateCloseDropsPending(t *testing.T) {
	ch := &pendingChannel{Fake: channel.NewFake("10.0.0.2:5000")}
	rec := newRecorder()
	_, s := newTestSession(t, ch, rec)

	require.NoError(t, s.Write([]byte("a")))
	require.NoError(t, s.Write([]byte("b")))
	require.NoError(t, s.Close(true))

	assert.Equal(t, []types.StateStatus{types.StateSessionClosed}, rec.Events())

	// 关闭后完成的写不再产生事件
	require.True(t, ch.completeWrite())
	assert.False(t, ch.completeWrite())
	assert.Equal(t, []types.StateStatus{types.StateSessionClosed}, rec.Events())
	assert.NoError(t, s.Close(false))
}

func TestSession_WriteQueueFull(t *testing.T) {
	ch := &pendingChannel{Fake: channel.NewFake("10.0.0.2:5000")}
	e, err := New(Config{ReadBufferSize: 64, WriteQueueSize: 2, MaxLineLength: 64}, pipeline.New())
	require.NoError(t, err)
	s := newSession(e, "s1", ch)

	require.NoError(t, s.Write([]byte("a")))
	require.NoError(t, s.Write([]byte("b")))
	assert.ErrorIs(t, s.Write([]byte("c")), ErrWriteQueueFull)
}

func TestSession_ProcessException(t *testing.T) {
	fake := channel.NewFake("10.0.0.2:5000").WithSource([]byte("x\n"))
	rec := newRecorder()
	e, err := New(DefaultConfig(), pipeline.New(rec), WithProcessor(pkgif.ProcessorFunc(func(pkgif.Session, any) error {
		return errors.New("handler failed")
	})))
	require.NoError(t, err)
	s := newSession(e, "s1", fake)

	s.read()
	assert.Equal(t, []types.StateStatus{
		types.StateProcessException,
		types.StateInputShutdown,
		types.StateSessionClosed,
	}, rec.Events())
}

// blockingPlugin 在指定事件的回调中阻塞，直到 release 被关闭
type blockingPlugin struct {
	pipeline.Base
	on      types.StateStatus
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPlugin) OnStateEvent(_ pkgif.Session, status types.StateStatus, _ error) {
	if status == p.on {
		close(p.entered)
		<-p.release
	}
}

func TestSession_ClosedStaysLastAcrossGoroutines(t *testing.T) {
	blocker := &blockingPlugin{
		Base:    pipeline.NewBase("blocker"),
		on:      types.StateProcessException,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	rec := newRecorder()

	fake := channel.NewFake("10.0.0.2:5000").WithSource([]byte("x\n"))
	e, err := New(DefaultConfig(), pipeline.New(blocker, rec), WithProcessor(pkgif.ProcessorFunc(func(pkgif.Session, any) error {
		return errors.New("handler failed")
	})))
	require.NoError(t, err)
	s := newSession(e, "s1", fake)
	s.fire(types.StateNewSession, nil)

	go s.read()

	select {
	case <-blocker.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("processing failure was not dispatched")
	}
	require.NoError(t, s.Close(true))
	assert.False(t, s.IsValid())
	close(blocker.release)

	rec.waitClosed(t)
	assert.Equal(t, []types.StateStatus{
		types.StateNewSession,
		types.StateProcessException,
		types.StateSessionClosed,
	}, rec.Events())

	s.fire(types.StateInputException, errors.New("late"))
	assert.Equal(t, types.StateSessionClosed, rec.Events()[len(rec.Events())-1])
}

func TestSession_EventFiredFromHandlerIsQueued(t *testing.T) {
	rec := newRecorder()
	var s *session
	closer := &closeOnEvent{Base: pipeline.NewBase("closer"), on: types.StateProcessException, fn: func() {
		_ = s.Close(true)
	}}

	fake := channel.NewFake("10.0.0.2:5000").WithSource([]byte("x\n"))
	e, err := New(DefaultConfig(), pipeline.New(closer, rec), WithProcessor(pkgif.ProcessorFunc(func(pkgif.Session, any) error {
		return errors.New("handler failed")
	})))
	require.NoError(t, err)
	s = newSession(e, "s1", fake)

	s.read()
	assert.Equal(t, []types.StateStatus{
		types.StateProcessException,
		types.StateSessionClosed,
	}, rec.Events())
}

// closeOnEvent 在指定事件的回调中关闭会话
type closeOnEvent struct {
	pipeline.Base
	on    types.StateStatus
	fn func()
}

func (p *closeOnEvent) OnStateEvent(_ pkgif.Session, status types.StateStatus, _ error) {
	if status == p.on {
		p.fn()
	}
}

// ============================================================================
//                              编解码
// ============================================================================

func TestLineDecoder(t *testing.T) {
	d := LineDecoder{MaxLength: 8}

	buf := types.WrapBuffer([]byte("ab\r\ncd\nef"))
	msg, err := d.Decode(buf, nil)
	require.NoError(t, err)
	assert.Equal(t, "ab", msg)

	msg, err = d.Decode(buf, nil)
	require.NoError(t, err)
	assert.Equal(t, "cd", msg)

	msg, err = d.Decode(buf, nil)
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Equal(t, "ef", string(buf.Bytes()), "incomplete line leaves position untouched")

	_, err = d.Decode(types.WrapBuffer([]byte("123456789\n")), nil)
	assert.ErrorIs(t, err, ErrLineTooLong)
	_, err = d.Decode(types.WrapBuffer([]byte("12345678")), nil)
	assert.ErrorIs(t, err, ErrLineTooLong)
}

func TestLineEncoder(t *testing.T) {
	out, err := LineEncoder{}.Encode("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(out))

	out, err = LineEncoder{}.Encode([]byte("yo"))
	require.NoError(t, err)
	assert.Equal(t, "yo\n", string(out))

	_, err = LineEncoder{}.Encode(42)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.MaxLineLength = bad.ReadBufferSize + 1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultConfig()
	bad.WriteQueueSize = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	cfg := config.NewConfig()
	cfg.Engine.ListenAddr = "0.0.0.0:7000"
	assert.Equal(t, "0.0.0.0:7000", ConfigFromUnified(cfg).ListenAddr)
}

// ============================================================================
//                              Fx 模块
// ============================================================================

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Engine.ListenAddr = "127.0.0.1:0"

	var e *Engine
	var stats pkgif.StatsProvider
	app := fxtest.New(t,
		fx.Supply(cfg),
		eventbus.Module(),
		pipeline.Module(),
		Module(),
		fx.Populate(&e, &stats),
	)
	app.RequireStart()

	require.NotNil(t, e.Addr())
	conn, err := net.DialTimeout("tcp", e.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	_, err = conn.Write([]byte("ping\n"))
	require.NoError(t, err)
	got, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ping\n", got)
	_ = conn.Close()

	assert.Equal(t, int64(1), stats.Stats().Accepted)
	app.RequireStop()
}
