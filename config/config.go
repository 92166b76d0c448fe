// Package config provides configuration loading and validation for the
// ticket pipeline. Configuration is read from a JSON file at startup with
// environment variable overrides for endpoints and credentials.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Transport modes
const (
	ModeSimulated = "simulated"
	ModeKafka     = "kafka"
	ModeJetStream = "jetstream"
)

// Default topic names
const (
	DefaultRawTopic       = "support-tickets"
	DefaultProcessedTopic = "processed-tickets"
	DefaultResponseTopic  = "ai-responses"
)

// Config is the root configuration for the pipeline process
type Config struct {
	Platform       PlatformConfig  `json:"platform"`
	Transport      TransportConfig `json:"transport"`
	Topics         TopicsConfig    `json:"topics"`
	SchemaRegistry RegistryConfig  `json:"schema_registry"`
	Envelope       EnvelopeConfig  `json:"envelope"`
	Thresholds     ThresholdConfig `json:"thresholds"`
	Pipeline       PipelineConfig  `json:"pipeline"`
	Metrics        MetricsConfig   `json:"metrics"`
}

// PlatformConfig identifies the deployment
type PlatformConfig struct {
	InstanceID  string `json:"instance_id"`
	Environment string `json:"environment"`
}

// TransportConfig selects and configures the message transport
type TransportConfig struct {
	Mode      string          `json:"mode"`
	Kafka     KafkaConfig     `json:"kafka"`
	JetStream JetStreamConfig `json:"jetstream"`
	Simulated SimulatedConfig `json:"simulated"`
}

// KafkaConfig configures the Kafka transport
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
}

// JetStreamConfig configures the NATS JetStream transport
type JetStreamConfig struct {
	URLs    []string `json:"urls"`
	Durable string   `json:"durable"`
}

// SimulatedConfig configures the in-process transport.
// DemoIntervalMs of 0 disables synthetic ticket generation.
type SimulatedConfig struct {
	QueueSize      int   `json:"queue_size"`
	DemoIntervalMs int64 `json:"demo_interval_ms"`
}

// TopicsConfig names the three pipeline topics
type TopicsConfig struct {
	Raw       string `json:"raw"`
	Processed string `json:"processed"`
	Responses string `json:"responses"`
}

// RegistryConfig configures the schema authority client.
// An empty URL puts every topic on the fallback textual encoding.
type RegistryConfig struct {
	URL       string `json:"url"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	TimeoutMs int64  `json:"timeout_ms"`
}

// EnvelopeConfig toggles the JSON-RPC envelope on the textual encoding path
type EnvelopeConfig struct {
	Enabled bool `json:"enabled"`
}

// ThresholdConfig holds the escalation decision thresholds
type ThresholdConfig struct {
	// HighUrgency escalates NEGATIVE tickets at or above this urgency
	HighUrgency float64 `json:"high_urgency"`
	// MediumUrgency raises NEGATIVE tickets below HighUrgency to MEDIUM;
	// NEGATIVE tickets below it stay LOW
	MediumUrgency float64 `json:"medium_urgency"`
	// OverrideUrgency escalates any ticket regardless of sentiment
	OverrideUrgency float64 `json:"override_urgency"`
}

// PipelineConfig bounds the orchestrator
type PipelineConfig struct {
	Workers           int   `json:"workers"`
	QueueSize         int   `json:"queue_size"`
	StageTimeoutMs    int64 `json:"stage_timeout_ms"`
	PublishRetries    int   `json:"publish_retries"`
	RecentEvents      int   `json:"recent_events"`
	ShutdownTimeoutMs int64 `json:"shutdown_timeout_ms"`
}

// MetricsConfig configures the Prometheus HTTP endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// Default returns a configuration with every field set to its default
func Default() *Config {
	return &Config{
		Platform: PlatformConfig{
			InstanceID:  "supportstream-local",
			Environment: "development",
		},
		Transport: TransportConfig{
			Mode: ModeSimulated,
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "supportstream",
			},
			JetStream: JetStreamConfig{
				URLs:    []string{"nats://localhost:4222"},
				Durable: "supportstream",
			},
			Simulated: SimulatedConfig{
				QueueSize:      256,
				DemoIntervalMs: 5000,
			},
		},
		Topics: TopicsConfig{
			Raw:       DefaultRawTopic,
			Processed: DefaultProcessedTopic,
			Responses: DefaultResponseTopic,
		},
		SchemaRegistry: RegistryConfig{
			TimeoutMs: 5000,
		},
		Envelope: EnvelopeConfig{
			Enabled: true,
		},
		Thresholds: ThresholdConfig{
			HighUrgency:     0.6,
			MediumUrgency:   0.3,
			OverrideUrgency: 0.8,
		},
		Pipeline: PipelineConfig{
			Workers:           4,
			QueueSize:         256,
			StageTimeoutMs:    3000,
			PublishRetries:    3,
			RecentEvents:      50,
			ShutdownTimeoutMs: 30000,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Load reads configuration from a JSON file, applies defaults for absent
// fields, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets deploy environments override endpoints and
// credentials without editing the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SUPPORTSTREAM_TRANSPORT_MODE"); v != "" {
		c.Transport.Mode = v
	}
	if v := os.Getenv("SUPPORTSTREAM_KAFKA_BROKERS"); v != "" {
		c.Transport.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("SUPPORTSTREAM_NATS_URLS"); v != "" {
		c.Transport.JetStream.URLs = splitList(v)
	}
	if v := os.Getenv("SCHEMA_REGISTRY_URL"); v != "" {
		c.SchemaRegistry.URL = v
	}
	if v := os.Getenv("SCHEMA_REGISTRY_API_KEY"); v != "" {
		c.SchemaRegistry.APIKey = v
	}
	if v := os.Getenv("SCHEMA_REGISTRY_API_SECRET"); v != "" {
		c.SchemaRegistry.APISecret = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate checks the configuration for internal consistency
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case ModeSimulated:
	case ModeKafka:
		if len(c.Transport.Kafka.Brokers) == 0 {
			return fmt.Errorf("transport.kafka.brokers required for kafka mode")
		}
		if c.Transport.Kafka.GroupID == "" {
			return fmt.Errorf("transport.kafka.group_id required for kafka mode")
		}
	case ModeJetStream:
		if len(c.Transport.JetStream.URLs) == 0 {
			return fmt.Errorf("transport.jetstream.urls required for jetstream mode")
		}
		if c.Transport.JetStream.Durable == "" {
			return fmt.Errorf("transport.jetstream.durable required for jetstream mode")
		}
	default:
		return fmt.Errorf("unknown transport mode %q", c.Transport.Mode)
	}

	if c.Topics.Raw == "" || c.Topics.Processed == "" || c.Topics.Responses == "" {
		return fmt.Errorf("all three topic names must be set")
	}
	if c.Topics.Raw == c.Topics.Processed || c.Topics.Processed == c.Topics.Responses ||
		c.Topics.Raw == c.Topics.Responses {
		return fmt.Errorf("topic names must be distinct")
	}

	t := c.Thresholds
	for name, v := range map[string]float64{
		"high_urgency":     t.HighUrgency,
		"medium_urgency":   t.MediumUrgency,
		"override_urgency": t.OverrideUrgency,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("thresholds.%s must be in [0,1], got %v", name, v)
		}
	}
	if t.MediumUrgency > t.HighUrgency {
		return fmt.Errorf("thresholds.medium_urgency must not exceed high_urgency")
	}

	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be positive")
	}
	if c.Pipeline.QueueSize <= 0 {
		return fmt.Errorf("pipeline.queue_size must be positive")
	}
	if c.Pipeline.StageTimeoutMs <= 0 {
		return fmt.Errorf("pipeline.stage_timeout_ms must be positive")
	}
	if c.Pipeline.RecentEvents < 0 {
		return fmt.Errorf("pipeline.recent_events must not be negative")
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}

	return nil
}

// StageTimeout returns the per-stage timeout as a duration
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.Pipeline.StageTimeoutMs) * time.Millisecond
}

// ShutdownTimeout returns the shutdown timeout as a duration
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Pipeline.ShutdownTimeoutMs) * time.Millisecond
}

// RegistryTimeout returns the schema authority request timeout
func (c *Config) RegistryTimeout() time.Duration {
	return time.Duration(c.SchemaRegistry.TimeoutMs) * time.Millisecond
}

// DemoInterval returns the synthetic ticket interval, zero when disabled
func (c *Config) DemoInterval() time.Duration {
	return time.Duration(c.Transport.Simulated.DemoIntervalMs) * time.Millisecond
}

// TopicList returns the three pipeline topics in flow order
func (c *Config) TopicList() []string {
	return []string{c.Topics.Raw, c.Topics.Processed, c.Topics.Responses}
}
