package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/c360/supportstream/metric"
)

// delivery stands in for the transport payloads the pipeline feeds
// through the pool
type delivery struct {
	ticketID string
	slow     bool
	fail     bool
}

func countingProcessor(processed *atomic.Int64, failures *atomic.Int64) func(context.Context, delivery) error {
	return func(_ context.Context, d delivery) error {
		if d.slow {
			time.Sleep(20 * time.Millisecond)
		}
		if d.fail {
			failures.Add(1)
			return errors.New("processing failed")
		}
		processed.Add(1)
		return nil
	}
}

func TestNewPoolDefaults(t *testing.T) {
	var processed, failures atomic.Int64
	pool := NewPool(0, 0, countingProcessor(&processed, &failures))
	if pool.workers != 10 {
		t.Errorf("expected default 10 workers, got %d", pool.workers)
	}
	if pool.queueSize != 1000 {
		t.Errorf("expected default queue size 1000, got %d", pool.queueSize)
	}

	pool = NewPool(3, 7, countingProcessor(&processed, &failures))
	if pool.workers != 3 || pool.queueSize != 7 {
		t.Errorf("expected 3 workers and queue 7, got %d and %d", pool.workers, pool.queueSize)
	}
}

func TestNewPoolNilProcessorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil processor")
		}
	}()
	NewPool[delivery](5, 100, nil)
}

func TestSubmitBeforeStart(t *testing.T) {
	var processed, failures atomic.Int64
	pool := NewPool(2, 10, countingProcessor(&processed, &failures))

	if err := pool.Submit(delivery{ticketID: "T001"}); !errors.Is(err, ErrPoolNotStarted) {
		t.Errorf("expected ErrPoolNotStarted, got %v", err)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	var processed, failures atomic.Int64
	pool := NewPool(2, 10, countingProcessor(&processed, &failures))

	ctx := context.Background()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := pool.Start(ctx); !errors.Is(err, ErrPoolAlreadyStarted) {
		t.Errorf("expected ErrPoolAlreadyStarted, got %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := pool.Submit(delivery{ticketID: "T001"}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	if err := pool.Stop(time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if got := processed.Load(); got != 5 {
		t.Errorf("expected 5 processed after drain, got %d", got)
	}

	// Stop is idempotent, submit after stop is rejected
	if err := pool.Stop(time.Second); err != nil {
		t.Errorf("second stop should be nil, got %v", err)
	}
	if err := pool.Submit(delivery{}); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}
}

func TestQueueFull(t *testing.T) {
	block := make(chan struct{})
	var once sync.Once
	pool := NewPool(1, 1, func(_ context.Context, _ delivery) error {
		<-block
		return nil
	})
	defer once.Do(func() { close(block) })

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// One in the worker, one in the queue, the rest must be rejected
	sawFull := false
	for i := 0; i < 10; i++ {
		if err := pool.Submit(delivery{}); errors.Is(err, ErrQueueFull) {
			sawFull = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !sawFull {
		t.Fatal("expected ErrQueueFull")
	}

	stats := pool.Stats()
	if stats.Dropped == 0 {
		t.Errorf("expected dropped count > 0, got %d", stats.Dropped)
	}

	once.Do(func() { close(block) })
	_ = pool.Stop(time.Second)
}

func TestFailedItemsCounted(t *testing.T) {
	var processed, failures atomic.Int64
	pool := NewPool(2, 10, countingProcessor(&processed, &failures))

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		_ = pool.Submit(delivery{ticketID: "T001", fail: i%2 == 0})
	}
	if err := pool.Stop(time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	stats := pool.Stats()
	if stats.Processed != 4 {
		t.Errorf("expected 4 processed, got %d", stats.Processed)
	}
	if stats.Failed != 2 {
		t.Errorf("expected 2 failed, got %d", stats.Failed)
	}
	if failures.Load() != 2 {
		t.Errorf("expected processor to see 2 failures, got %d", failures.Load())
	}
}

func TestStopTimeout(t *testing.T) {
	started := make(chan struct{})
	block := make(chan struct{})
	defer close(block)

	pool := NewPool(1, 1, func(_ context.Context, _ delivery) error {
		close(started)
		<-block
		return nil
	})

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := pool.Submit(delivery{slow: true}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	<-started

	if err := pool.Stop(50 * time.Millisecond); !errors.Is(err, ErrStopTimeout) {
		t.Errorf("expected ErrStopTimeout, got %v", err)
	}
}

func TestDrainAfterContextCancel(t *testing.T) {
	var processed, cancelled atomic.Int64
	pool := NewPool(2, 50, func(ctx context.Context, _ delivery) error {
		time.Sleep(5 * time.Millisecond)
		if ctx.Err() != nil {
			cancelled.Add(1)
		}
		processed.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		if err := pool.Submit(delivery{ticketID: "T001"}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	// Cancelling the start context must not abandon accepted work
	cancel()
	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	if got := processed.Load(); got != 20 {
		t.Errorf("expected all 20 accepted items drained, got %d", got)
	}
	if got := cancelled.Load(); got != 0 {
		t.Errorf("expected no item to see a cancelled context, got %d", got)
	}
}

func TestStatsSnapshot(t *testing.T) {
	var processed, failures atomic.Int64
	pool := NewPool(4, 32, countingProcessor(&processed, &failures))

	stats := pool.Stats()
	if stats.Workers != 4 || stats.QueueSize != 32 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.Submitted != 0 || stats.QueueDepth != 0 {
		t.Errorf("expected zeroed counters, got %+v", stats)
	}
}

func TestMetricsRegistration(t *testing.T) {
	var processed, failures atomic.Int64
	registry := metric.NewMetricsRegistry()

	pool := NewPool(2, 10, countingProcessor(&processed, &failures),
		WithMetricsRegistry[delivery](registry, "ticket_pool"))

	if pool.metrics == nil {
		t.Fatal("expected metrics to be initialized")
	}

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_ = pool.Submit(delivery{ticketID: "T001"})
	if err := pool.Stop(time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	families, err := registry.PrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := false
	for _, fam := range families {
		if fam.GetName() == "ticket_pool_submitted_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected ticket_pool_submitted_total to be registered")
	}
}
