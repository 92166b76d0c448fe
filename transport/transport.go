// Package transport defines the topic-addressed message transport the
// pipeline runs on. Implementations share at-least-once delivery
// semantics: a delivery is acknowledged after the handler returns, so
// consumers must tolerate redelivery.
package transport

import "context"

// Delivery is one message received from a topic
type Delivery struct {
	Topic string
	Key   string
	Value []byte
}

// Handler processes one delivery. Returning hands the message back to
// the transport for acknowledgement.
type Handler func(ctx context.Context, d Delivery)

// Transport publishes and consumes topic-addressed messages
type Transport interface {
	// Publish sends a payload to a topic. The key is a partitioning
	// hint; transports without keyed partitioning may ignore it.
	Publish(ctx context.Context, topic, key string, value []byte) error

	// Subscribe consumes the given topics, invoking the handler for
	// each delivery until the context is cancelled or Close is called.
	Subscribe(ctx context.Context, topics []string, h Handler) error

	// Close releases connections and stops all subscriptions.
	Close(ctx context.Context) error
}
