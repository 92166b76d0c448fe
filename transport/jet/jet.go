// Package jet implements the transport interface over NATS JetStream.
// Each topic maps to a stream whose single subject is the topic name.
// Message keys are ignored since JetStream has no partitioning keys.
package jet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/c360/supportstream/errors"
	"github.com/c360/supportstream/metric"
	"github.com/c360/supportstream/natsclient"
	"github.com/c360/supportstream/transport"
)

// rttInterval paces the broker round-trip time gauge updates
const rttInterval = 30 * time.Second

// Transport publishes and consumes topics through a NATS JetStream client
type Transport struct {
	client  *natsclient.Client
	durable string
	metrics *metric.Metrics
	logger  *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	streamsMu sync.Mutex
	streams   map[string]bool
}

// slogAdapter bridges the NATS client logger to slog
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Printf(format string, v ...interface{}) {
	a.logger.Info(fmt.Sprintf(format, v...))
}

func (a *slogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

func (a *slogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// New creates a JetStream transport and connects to the server. A nil
// metrics value disables broker gauges.
func New(ctx context.Context, urls []string, durable string, metrics *metric.Metrics, logger *slog.Logger) (*Transport, error) {
	if len(urls) == 0 {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Transport", "New", "no NATS URLs")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "jetstream_transport")

	client, err := natsclient.NewClient(strings.Join(urls, ","),
		natsclient.WithLogger(&slogAdapter{logger: logger}),
		natsclient.WithClientName("supportstream"),
		natsclient.WithStatusCallback(statusRecorder(metrics)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "Transport", "New", "create client")
	}

	if err := client.Connect(ctx); err != nil {
		return nil, errors.Wrap(err, "Transport", "New", "connect")
	}

	t := &Transport{
		client:  client,
		durable: durable,
		metrics: metrics,
		logger:  logger,
		done:    make(chan struct{}),
		streams: make(map[string]bool),
	}

	if metrics != nil {
		t.wg.Add(1)
		go t.rttMonitor()
	}
	return t, nil
}

// statusRecorder maps client connection states onto the broker gauges
func statusRecorder(metrics *metric.Metrics) func(natsclient.ConnectionStatus) {
	return func(status natsclient.ConnectionStatus) {
		if metrics == nil {
			return
		}
		connected := status == natsclient.StatusConnected
		metrics.RecordBrokerStatus(connected)
		metrics.RecordHealthStatus("transport", connected)

		circuit := 0
		if status == natsclient.StatusCircuitOpen {
			circuit = 1
		}
		metrics.RecordCircuitBreakerState(circuit)

		if status == natsclient.StatusReconnecting {
			metrics.RecordBrokerReconnect()
		}
	}
}

// rttMonitor samples the broker round-trip time until Close
func (t *Transport) rttMonitor() {
	defer t.wg.Done()

	ticker := time.NewTicker(rttInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			rtt, err := t.client.RTT()
			if err != nil {
				continue
			}
			t.metrics.RecordBrokerRTT(rtt)
		}
	}
}

// streamName derives a stream name from a topic. Dots are not valid in
// stream names so they are replaced.
func streamName(topic string) string {
	return strings.ToUpper(strings.ReplaceAll(topic, ".", "-"))
}

func (t *Transport) ensureStream(ctx context.Context, topic string) error {
	t.streamsMu.Lock()
	defer t.streamsMu.Unlock()

	if t.streams[topic] {
		return nil
	}
	if err := t.client.EnsureStream(ctx, streamName(topic), topic); err != nil {
		return err
	}
	t.streams[topic] = true
	return nil
}

// Publish sends a record to the topic's stream
func (t *Transport) Publish(ctx context.Context, topic, key string, value []byte) error {
	if err := t.ensureStream(ctx, topic); err != nil {
		return errors.Wrap(err, "Transport", "Publish", "ensure stream")
	}
	if err := t.client.PublishToStream(ctx, topic, value); err != nil {
		return errors.Wrap(err, "Transport", "Publish", "publish to stream")
	}
	return nil
}

// Subscribe starts durable consumers on each topic. Messages are
// acknowledged after the handler returns.
func (t *Transport) Subscribe(ctx context.Context, topics []string, h transport.Handler) error {
	if h == nil {
		return errors.WrapInvalid(errors.ErrInvalidRequest, "Transport", "Subscribe", "nil handler")
	}

	for _, topic := range topics {
		if err := t.ensureStream(ctx, topic); err != nil {
			return errors.Wrap(err, "Transport", "Subscribe", "ensure stream")
		}

		topic := topic
		durable := fmt.Sprintf("%s-%s", t.durable, streamName(topic))
		err := t.client.ConsumeStream(ctx, streamName(topic), topic, durable, func(data []byte) {
			h(ctx, transport.Delivery{Topic: topic, Value: data})
		})
		if err != nil {
			return errors.Wrap(err, "Transport", "Subscribe", "start consumer")
		}
		t.logger.Info("Subscribed to topic", "topic", topic, "durable", durable)
	}
	return nil
}

// Close stops the RTT monitor and drains the NATS connection
func (t *Transport) Close(ctx context.Context) error {
	t.closeOnce.Do(func() { close(t.done) })
	t.wg.Wait()
	return t.client.Close(ctx)
}
