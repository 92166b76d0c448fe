// Package supportstream is a streaming pipeline for customer support
// tickets: it consumes raw tickets, scores sentiment and urgency,
// decides escalation, and publishes an AI-drafted response for every
// ticket.
//
// # Architecture
//
// Tickets flow strictly forward through three topics:
//
//	support-tickets -> processed-tickets -> ai-responses
//
// The pipeline orchestrator (package pipeline) subscribes to the raw
// topic and runs three stages per ticket, each worker owning one
// ticket end-to-end:
//
//   - Sentiment (package analyze): pluggable scorer, urgency signals,
//     keyword extraction
//   - Escalation (package escalate): pure threshold mapping to a
//     priority level and escalation decision
//   - Response (package respond): pluggable responder with a
//     deterministic template fallback
//
// # Transports
//
// Three interchangeable transports implement the transport interface:
//
//   - transport/sim: in-process channels, the default, with optional
//     synthetic demo traffic
//   - transport/kafkatransport: Apache Kafka consumer groups
//   - transport/jet: NATS JetStream durable consumers
//
// All transports deliver at least once; the tally is keyed by
// ticket id so redelivery never double-counts.
//
// # Encoding
//
// Records are framed by the schema channel (package schema). When a
// Confluent-style schema registry is configured, payloads are
// validated and carry a binary schema-id header; otherwise they fall
// back to a textual JSON-RPC envelope (package envelope) or bare
// JSON. Consumers dispatch on the leading byte, so mixed streams
// decode cleanly.
//
// # Getting Started
//
// Run the binary with no arguments for a self-contained demo:
//
//	go run ./cmd/supportstream
//
// It starts the simulated transport, generates synthetic tickets, and
// serves Prometheus metrics on :9090.
package supportstream
