package sim

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/supportstream/transport"
)

func TestPublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(10, nil)
	require.NoError(t, bus.Start(ctx))

	var mu sync.Mutex
	var got []transport.Delivery
	done := make(chan struct{})

	err := bus.Subscribe(ctx, []string{"orders"}, func(_ context.Context, d transport.Delivery) {
		mu.Lock()
		got = append(got, d)
		if len(got) == 3 {
			close(done)
		}
		mu.Unlock()
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(ctx, "orders", fmt.Sprintf("k%d", i), []byte(fmt.Sprintf("v%d", i))))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, "orders", got[0].Topic)
	assert.Equal(t, "k0", got[0].Key)
	assert.Equal(t, []byte("v0"), got[0].Value)
	assert.Equal(t, []byte("v2"), got[2].Value)
}

func TestOrderingPerTopic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(100, nil)
	require.NoError(t, bus.Start(ctx))

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})
	const n = 50

	err := bus.Subscribe(ctx, []string{"events"}, func(_ context.Context, d transport.Delivery) {
		mu.Lock()
		order = append(order, string(d.Value))
		if len(order) == n {
			close(done)
		}
		mu.Unlock()
	})
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		require.NoError(t, bus.Publish(ctx, "events", "", []byte(fmt.Sprintf("%03d", i))))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("%03d", i), order[i])
	}
}

func TestPublishBlocksWhenFull(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(1, nil)
	require.NoError(t, bus.Start(ctx))

	require.NoError(t, bus.Publish(ctx, "full", "", []byte("a")))

	blockedCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	err := bus.Publish(blockedCtx, "full", "", []byte("b"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDemoTraffic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seq int
	bus := NewBus(10, nil, WithDemoTraffic("demo", 10*time.Millisecond, func() ([]byte, error) {
		seq++
		return []byte(fmt.Sprintf("demo-%d", seq)), nil
	}))

	var mu sync.Mutex
	var count int
	done := make(chan struct{})

	err := bus.Subscribe(ctx, []string{"demo"}, func(_ context.Context, d transport.Delivery) {
		mu.Lock()
		count++
		if count == 3 {
			close(done)
		}
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, bus.Start(ctx))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for demo traffic")
	}
}

func TestCloseStopsDispatchers(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(10, nil)
	require.NoError(t, bus.Start(ctx))

	require.NoError(t, bus.Subscribe(ctx, []string{"t"}, func(_ context.Context, _ transport.Delivery) {}))

	closeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, bus.Close(closeCtx))

	err := bus.Publish(ctx, "t", "", []byte("late"))
	assert.Error(t, err)

	// Close is idempotent
	require.NoError(t, bus.Close(closeCtx))
}

func TestStartTwice(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(10, nil)
	require.NoError(t, bus.Start(ctx))
	assert.Error(t, bus.Start(ctx))
}
