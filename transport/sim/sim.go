// Package sim provides an in-process transport backed by buffered
// channels. It is the default mode and needs no external broker. A
// demo source can be attached to feed synthetic traffic into a topic.
package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/supportstream/errors"
	"github.com/c360/supportstream/transport"
)

// DemoSource produces payloads for synthetic traffic
type DemoSource func() ([]byte, error)

type demoFeed struct {
	topic    string
	interval time.Duration
	source   DemoSource
}

// Bus is an in-process transport. Each topic gets a buffered channel
// and a dispatcher goroutine per subscription.
type Bus struct {
	queueSize int
	logger    *slog.Logger

	mu       sync.Mutex
	topics   map[string]chan transport.Delivery
	started  bool
	closed   bool
	done     chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	demoFeed *demoFeed
}

// Option configures a Bus
type Option func(*Bus)

// WithDemoTraffic attaches a synthetic traffic source to a topic
func WithDemoTraffic(topic string, interval time.Duration, source DemoSource) Option {
	return func(b *Bus) {
		b.demoFeed = &demoFeed{topic: topic, interval: interval, source: source}
	}
}

// NewBus creates a simulated transport with the given per-topic queue size
func NewBus(queueSize int, logger *slog.Logger, opts ...Option) *Bus {
	if queueSize <= 0 {
		queueSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &Bus{
		queueSize: queueSize,
		logger:    logger.With("component", "sim_transport"),
		topics:    make(map[string]chan transport.Delivery),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start begins demo traffic generation if a source was attached. It
// must be called before the bus is used when demo traffic is wanted.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return errors.ErrAlreadyStarted
	}
	if b.closed {
		return errors.ErrShuttingDown
	}
	b.started = true

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	if b.demoFeed != nil {
		feed := b.demoFeed
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.runDemo(runCtx, feed)
		}()
		b.logger.Info("Demo traffic enabled",
			"topic", feed.topic, "interval", feed.interval)
	}
	return nil
}

func (b *Bus) runDemo(ctx context.Context, feed *demoFeed) {
	ticker := time.NewTicker(feed.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload, err := feed.source()
			if err != nil {
				b.logger.Error("Demo source failed", "error", err)
				continue
			}
			if err := b.Publish(ctx, feed.topic, "", payload); err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Error("Demo publish failed", "error", err)
			}
		}
	}
}

func (b *Bus) channel(topic string) (chan transport.Delivery, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errors.ErrShuttingDown
	}
	ch, ok := b.topics[topic]
	if !ok {
		ch = make(chan transport.Delivery, b.queueSize)
		b.topics[topic] = ch
	}
	return ch, nil
}

// Publish enqueues a record on the topic's channel, blocking when the
// queue is full until space frees or the context is cancelled.
func (b *Bus) Publish(ctx context.Context, topic, key string, value []byte) error {
	ch, err := b.channel(topic)
	if err != nil {
		return errors.Wrap(err, "Bus", "Publish", "resolve topic")
	}

	d := transport.Delivery{Topic: topic, Key: key, Value: value}
	select {
	case ch <- d:
		return nil
	case <-ctx.Done():
		return errors.WrapTransient(ctx.Err(), "Bus", "Publish", "enqueue record")
	case <-b.done:
		return errors.Wrap(errors.ErrShuttingDown, "Bus", "Publish", "enqueue record")
	}
}

// Subscribe starts a dispatcher goroutine per topic that invokes the
// handler for each delivery in order.
func (b *Bus) Subscribe(ctx context.Context, topics []string, h transport.Handler) error {
	if h == nil {
		return errors.WrapInvalid(errors.ErrInvalidRequest, "Bus", "Subscribe", "nil handler")
	}

	for _, topic := range topics {
		ch, err := b.channel(topic)
		if err != nil {
			return errors.Wrap(err, "Bus", "Subscribe", "resolve topic")
		}

		b.wg.Add(1)
		go func(topic string, ch chan transport.Delivery) {
			defer b.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-b.done:
					return
				case d, ok := <-ch:
					if !ok {
						return
					}
					h(ctx, d)
				}
			}
		}(topic, ch)
	}
	return nil
}

// Close stops demo traffic and dispatchers. Queued records that were
// not yet handled are dropped.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancel := b.cancel
	close(b.done)
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.WrapTransient(ctx.Err(), "Bus", "Close", "wait for dispatchers")
	}
}
