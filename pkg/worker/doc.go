// Package worker provides a generic worker pool for concurrent task processing.
//
// # Overview
//
// Pool[T] processes work items of any type T with a fixed number of worker
// goroutines and a bounded queue. Submission is non-blocking: when the queue
// is full, Submit returns ErrQueueFull and the caller decides whether to
// drop, retry, or apply backpressure upstream.
//
// The pipeline uses a Pool[transport.Delivery] to bound the number of
// tickets being analyzed concurrently.
//
// # Usage
//
//	pool := worker.NewPool(4, 256, func(ctx context.Context, d transport.Delivery) error {
//	    return handle(ctx, d)
//	})
//
//	if err := pool.Start(ctx); err != nil {
//	    return err
//	}
//	defer pool.Stop(10 * time.Second)
//
//	if err := pool.Submit(delivery); errors.Is(err, worker.ErrQueueFull) {
//	    // shed load
//	}
//
// # Metrics
//
// With WithMetricsRegistry the pool registers queue depth, utilization,
// counters, and a processing duration histogram under the given prefix.
//
// # Lifecycle
//
// Start must be called before Submit. Stop closes the queue, drains
// in-flight work, and returns ErrStopTimeout if workers do not finish
// within the timeout. Statistics are available at any time via Stats.
package worker
