// Package kafkatransport implements the transport interface over
// Apache Kafka using segmentio/kafka-go. Writers are created lazily
// per topic and readers join a consumer group, committing offsets
// after the handler returns.
package kafkatransport

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/c360/supportstream/errors"
	"github.com/c360/supportstream/transport"
)

// Transport publishes and consumes Kafka topics
type Transport struct {
	brokers []string
	groupID string
	logger  *slog.Logger

	writersMu sync.Mutex
	writers   map[string]*kafka.Writer

	readersMu sync.Mutex
	readers   []*kafka.Reader
	wg        sync.WaitGroup
	closed    atomic.Bool
}

// New creates a Kafka transport for the given brokers and consumer group
func New(brokers []string, groupID string, logger *slog.Logger) (*Transport, error) {
	if len(brokers) == 0 {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Transport", "New", "no brokers")
	}
	if groupID == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Transport", "New", "empty group id")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Transport{
		brokers: brokers,
		groupID: groupID,
		logger:  logger.With("component", "kafka_transport"),
		writers: make(map[string]*kafka.Writer),
	}, nil
}

func (t *Transport) writer(topic string) (*kafka.Writer, error) {
	t.writersMu.Lock()
	defer t.writersMu.Unlock()

	if t.closed.Load() {
		return nil, errors.ErrShuttingDown
	}
	if w, ok := t.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(t.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	t.writers[topic] = w
	return w, nil
}

// Publish writes a record to the topic. The key selects the partition
// so records for one ticket stay ordered.
func (t *Transport) Publish(ctx context.Context, topic, key string, value []byte) error {
	w, err := t.writer(topic)
	if err != nil {
		return errors.Wrap(err, "Transport", "Publish", "get writer")
	}

	msg := kafka.Message{Value: value}
	if key != "" {
		msg.Key = []byte(key)
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		return errors.WrapTransient(err, "Transport", "Publish", "write message")
	}
	return nil
}

// Subscribe starts a reader per topic in the configured consumer group.
// Offsets are committed after the handler returns, giving
// at-least-once delivery.
func (t *Transport) Subscribe(ctx context.Context, topics []string, h transport.Handler) error {
	if h == nil {
		return errors.WrapInvalid(errors.ErrInvalidRequest, "Transport", "Subscribe", "nil handler")
	}

	t.readersMu.Lock()
	defer t.readersMu.Unlock()

	if t.closed.Load() {
		return errors.ErrShuttingDown
	}

	for _, topic := range topics {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers:        t.brokers,
			GroupID:        t.groupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: 0,
		})
		t.readers = append(t.readers, r)

		t.wg.Add(1)
		go func(topic string, r *kafka.Reader) {
			defer t.wg.Done()
			t.consumeLoop(ctx, topic, r, h)
		}(topic, r)

		t.logger.Info("Subscribed to topic", "topic", topic, "group", t.groupID)
	}
	return nil
}

func (t *Transport) consumeLoop(ctx context.Context, topic string, r *kafka.Reader, h transport.Handler) {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.logger.Error("Fetch failed", "topic", topic, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		h(ctx, transport.Delivery{
			Topic: msg.Topic,
			Key:   string(msg.Key),
			Value: msg.Value,
		})

		if err := r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			t.logger.Error("Commit failed", "topic", topic, "error", err)
		}
	}
}

// Close shuts down all readers and writers
func (t *Transport) Close(ctx context.Context) error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	t.readersMu.Lock()
	readers := t.readers
	t.readers = nil
	t.readersMu.Unlock()

	var firstErr error
	for _, r := range readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "Transport", "Close", "close reader")
		}
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if firstErr == nil {
			firstErr = errors.WrapTransient(ctx.Err(), "Transport", "Close", "wait for readers")
		}
	}

	t.writersMu.Lock()
	writers := t.writers
	t.writers = nil
	t.writersMu.Unlock()

	for topic, w := range writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "Transport", "Close", "close writer for "+topic)
		}
	}
	return firstErr
}
