package tracer

import (
	"bytes"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/channel"
	"github.com/dep2p/go-netplug/pkg/types"
)

type collector struct {
	mu      sync.Mutex
	records []Record
}

func (c *collector) observe(r Record) {
	c.mu.Lock()
	c.records = append(c.records, r)
	c.mu.Unlock()
}

func (c *collector) joined() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []byte
	for _, r := range c.records {
		out = append(out, r.Data...)
	}
	return out
}

func TestTracer_ReadStreamReconstructed(t *testing.T) {
	payload := make([]byte, 10000)
	rand.New(rand.NewSource(1)).Read(payload)

	reads := &collector{}
	tr := New(Config{}, WithReadObserver(reads.observe))

	fake := channel.NewFake("10.0.0.2:7000").WithSource(payload).WithMaxPerOp(333)
	ch, err := tr.OnAccept(fake)
	require.NoError(t, err)

	var received []byte
	for {
		buf := types.NewBuffer(1024)
		var n int
		var rerr error
		ch.Read(buf, func(got int, err error) { n, rerr = got, err })
		if rerr != nil {
			break
		}
		received = append(received, buf.Array()[:n]...)
	}

	assert.Equal(t, payload, received)
	assert.Equal(t, payload, reads.joined())
	for _, r := range reads.records {
		assert.Equal(t, types.IORead, r.Direction)
		assert.Equal(t, "10.0.0.2:7000", r.Remote.String())
	}
}

func TestTracer_WriteUsesPrePosition(t *testing.T) {
	writes := &collector{}
	tr := New(Config{}, WithWriteObserver(writes.observe))

	fake := channel.NewFake("10.0.0.2:7000").WithMaxPerOp(4)
	ch, err := tr.OnAccept(fake)
	require.NoError(t, err)

	buf := types.WrapBuffer([]byte("0123456789"))
	buf.SetPosition(2)
	for buf.HasRemaining() {
		ch.Write(buf, func(int, error) {})
	}

	require.Len(t, writes.records, 2)
	assert.Equal(t, "2345", string(writes.records[0].Data))
	assert.Equal(t, "6789", string(writes.records[1].Data))
	assert.Equal(t, "23456789", string(fake.Written()))
}

func TestTracer_ObserverCannotMutateStream(t *testing.T) {
	tr := New(Config{}, WithReadObserver(func(r Record) {
		for i := range r.Data {
			r.Data[i] = '!'
		}
	}))

	ch, err := tr.OnAccept(channel.NewFake("10.0.0.2:7000").WithSource([]byte("intact")))
	require.NoError(t, err)

	buf := types.NewBuffer(16)
	ch.Read(buf, func(int, error) {})
	buf.Flip()
	assert.Equal(t, "intact", string(buf.Bytes()))
}

func TestTracer_ForwardsCompletionUnmodified(t *testing.T) {
	var seen int
	tr := New(Config{}, WithReadObserver(func(Record) { seen++ }))

	boom := assert.AnError
	ch, err := tr.OnAccept(channel.NewFake("10.0.0.2:7000").WithReadError(boom))
	require.NoError(t, err)

	var got error
	ch.Read(types.NewBuffer(8), func(n int, err error) {
		assert.Zero(t, n)
		got = err
	})
	assert.Same(t, boom, got)
	assert.Zero(t, seen)
}

func TestTracer_RecordMetadata(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c := &collector{}
	tr := New(Config{}, WithWriteObserver(c.observe), WithClock(func() time.Time { return at }))

	ch, err := tr.OnAccept(channel.NewFake("10.0.0.3:1"))
	require.NoError(t, err)
	ch.Write(types.WrapBuffer([]byte("x")), func(int, error) {})

	require.Len(t, c.records, 1)
	r := c.records[0]
	assert.Equal(t, types.IOWrite, r.Direction)
	assert.Equal(t, at, r.Time)
	assert.Equal(t, "127.0.0.1:9000", r.Local.String())

	records, n := tr.Stats()
	assert.Equal(t, int64(1), records)
	assert.Equal(t, int64(1), n)
}

func TestTracer_NoObserversPassThrough(t *testing.T) {
	tr := New(Config{})
	fake := channel.NewFake("10.0.0.3:1")
	ch, err := tr.OnAccept(fake)
	require.NoError(t, err)
	assert.Same(t, fake, ch)
}

func TestTracer_OnlyReadDirection(t *testing.T) {
	c := &collector{}
	tr := New(Config{}, WithReadObserver(c.observe))
	ch, err := tr.OnAccept(channel.NewFake("10.0.0.3:1"))
	require.NoError(t, err)

	ch.Write(types.WrapBuffer([]byte("out")), func(int, error) {})
	assert.Empty(t, c.records)
}

func TestLogObserver_DoesNotPanic(t *testing.T) {
	o := LogObserver(4)
	o(Record{Direction: types.IORead, Data: bytes.Repeat([]byte{0xab}, 32)})
}

func TestModule(t *testing.T) {
	c := &collector{}
	u := config.NewConfig()
	u.Tracer.Enable = true

	var tr *Tracer
	app := fxtest.New(t,
		fx.Supply(u),
		fx.Provide(fx.Annotate(
			func() Option { return WithWriteObserver(c.observe) },
			fx.ResultTags(`group:"tracer_options"`),
		)),
		Module(),
		fx.Populate(&tr),
	)
	app.RequireStart()
	defer app.RequireStop()

	ch, err := tr.OnAccept(channel.NewFake("10.0.0.3:1"))
	require.NoError(t, err)
	ch.Write(types.WrapBuffer([]byte("hi")), func(int, error) {})
	require.Len(t, c.records, 1)
}
