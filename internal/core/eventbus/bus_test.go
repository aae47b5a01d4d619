package eventbus

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ============================================================================
// 基础功能测试
// ============================================================================

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe(new(types.EvtSessionState))
	require.NoError(t, err)
	defer sub.Close()

	em, err := bus.Emitter(new(types.EvtSessionState))
	require.NoError(t, err)

	require.NoError(t, em.Emit(types.EvtSessionState{SessionID: "s1", Status: types.StateNewSession}))

	select {
	case evt := <-sub.Out():
		e := evt.(types.EvtSessionState)
		assert.Equal(t, "s1", e.SessionID)
		assert.Equal(t, types.StateNewSession, e.Status)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_InvalidTypes(t *testing.T) {
	bus := NewBus()

	_, err := bus.Subscribe(nil)
	assert.ErrorIs(t, err, ErrInvalidEventType)

	_, err = bus.Subscribe(types.EvtSessionState{})
	assert.ErrorIs(t, err, ErrNonPointerType)

	_, err = bus.Emitter(types.EvtTrafficSnapshot{})
	assert.ErrorIs(t, err, ErrNonPointerType)
}

func TestEmitter_TypeMismatch(t *testing.T) {
	bus := NewBus()
	em, err := bus.Emitter(new(types.EvtTrafficSnapshot))
	require.NoError(t, err)

	err = em.Emit(types.EvtSessionState{})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestEmitter_Closed(t *testing.T) {
	bus := NewBus()
	em, err := bus.Emitter(new(types.EvtTrafficSnapshot))
	require.NoError(t, err)
	require.NoError(t, em.Close())

	assert.ErrorIs(t, em.Emit(types.EvtTrafficSnapshot{}), ErrClosed)
}

// ============================================================================
// 缓冲与有状态模式
// ============================================================================

func TestBus_DropWhenFull(t *testing.T) {
	bus := NewBus()
	sub, err := bus.Subscribe(new(types.EvtTrafficSnapshot), BufSize(1))
	require.NoError(t, err)
	em, err := bus.Emitter(new(types.EvtTrafficSnapshot))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, em.Emit(types.EvtTrafficSnapshot{}))
	}

	assert.Len(t, sub.Out(), 1)
	tp, err := bus.topicFor(reflectTypeOf[types.EvtTrafficSnapshot]())
	require.NoError(t, err)
	assert.Equal(t, int64(4), tp.dropped.Load())
}

func TestBus_StatefulReplaysLast(t *testing.T) {
	bus := NewBus()
	em, err := bus.Emitter(new(types.EvtTrafficSnapshot), Stateful())
	require.NoError(t, err)
	require.NoError(t, em.Emit(types.EvtTrafficSnapshot{Snapshot: types.TrafficSnapshot{Online: 7}}))

	sub, err := bus.Subscribe(new(types.EvtTrafficSnapshot))
	require.NoError(t, err)

	evt := <-sub.Out()
	assert.Equal(t, int64(7), evt.(types.EvtTrafficSnapshot).Snapshot.Online)
}

// ============================================================================
// 关闭
// ============================================================================

func TestSubscription_CloseStopsDelivery(t *testing.T) {
	bus := NewBus()
	sub, err := bus.Subscribe(new(types.EvtSessionState))
	require.NoError(t, err)
	em, err := bus.Emitter(new(types.EvtSessionState))
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	require.NoError(t, em.Emit(types.EvtSessionState{}))

	_, ok := <-sub.Out()
	assert.False(t, ok)
}

func TestBus_CloseClosesSubscriptions(t *testing.T) {
	bus := NewBus()
	sub, err := bus.Subscribe(new(types.EvtSessionState))
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	_, ok := <-sub.Out()
	assert.False(t, ok)

	_, err = bus.Subscribe(new(types.EvtSessionState))
	assert.ErrorIs(t, err, ErrClosed)
	require.NoError(t, sub.Close())
}

func TestOptions(t *testing.T) {
	var s pkgif.SubscriptionSettings
	BufSize(32)(&s)
	assert.Equal(t, 32, s.Buffer)

	var e pkgif.EmitterSettings
	Stateful()(&e)
	assert.True(t, e.Stateful)
}

func reflectTypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
