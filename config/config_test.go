package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModeSimulated, cfg.Transport.Mode)
	assert.Equal(t, "support-tickets", cfg.Topics.Raw)
	assert.Equal(t, "processed-tickets", cfg.Topics.Processed)
	assert.Equal(t, "ai-responses", cfg.Topics.Responses)
	assert.True(t, cfg.Envelope.Enabled)
	assert.Equal(t, 0.6, cfg.Thresholds.HighUrgency)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"transport": {
			"mode": "kafka",
			"kafka": {"brokers": ["broker-1:9092", "broker-2:9092"], "group_id": "support-group"}
		},
		"thresholds": {"high_urgency": 0.7, "medium_urgency": 0.2, "override_urgency": 0.9},
		"envelope": {"enabled": false}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModeKafka, cfg.Transport.Mode)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Transport.Kafka.Brokers)
	assert.Equal(t, "support-group", cfg.Transport.Kafka.GroupID)
	assert.Equal(t, 0.7, cfg.Thresholds.HighUrgency)
	assert.False(t, cfg.Envelope.Enabled)

	// Fields absent from the file keep defaults
	assert.Equal(t, "support-tickets", cfg.Topics.Raw)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.json")
	assert.Error(t, err)
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SUPPORTSTREAM_TRANSPORT_MODE", "jetstream")
	t.Setenv("SUPPORTSTREAM_NATS_URLS", "nats://a:4222, nats://b:4222")
	t.Setenv("SCHEMA_REGISTRY_URL", "https://registry.example.com")
	t.Setenv("SCHEMA_REGISTRY_API_KEY", "key")
	t.Setenv("SCHEMA_REGISTRY_API_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeJetStream, cfg.Transport.Mode)
	assert.Equal(t, []string{"nats://a:4222", "nats://b:4222"}, cfg.Transport.JetStream.URLs)
	assert.Equal(t, "https://registry.example.com", cfg.SchemaRegistry.URL)
	assert.Equal(t, "key", cfg.SchemaRegistry.APIKey)
	assert.Equal(t, "secret", cfg.SchemaRegistry.APISecret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Transport.Mode = "carrier-pigeon" },
			wantErr: "unknown transport mode",
		},
		{
			name: "kafka without brokers",
			mutate: func(c *Config) {
				c.Transport.Mode = ModeKafka
				c.Transport.Kafka.Brokers = nil
			},
			wantErr: "brokers required",
		},
		{
			name: "kafka without group",
			mutate: func(c *Config) {
				c.Transport.Mode = ModeKafka
				c.Transport.Kafka.GroupID = ""
			},
			wantErr: "group_id required",
		},
		{
			name: "jetstream without urls",
			mutate: func(c *Config) {
				c.Transport.Mode = ModeJetStream
				c.Transport.JetStream.URLs = nil
			},
			wantErr: "urls required",
		},
		{
			name:    "empty topic",
			mutate:  func(c *Config) { c.Topics.Processed = "" },
			wantErr: "topic names must be set",
		},
		{
			name:    "duplicate topics",
			mutate:  func(c *Config) { c.Topics.Processed = c.Topics.Raw },
			wantErr: "must be distinct",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *Config) { c.Thresholds.HighUrgency = 1.5 },
			wantErr: "must be in [0,1]",
		},
		{
			name: "medium above high",
			mutate: func(c *Config) {
				c.Thresholds.MediumUrgency = 0.9
			},
			wantErr: "must not exceed high_urgency",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Pipeline.Workers = 0 },
			wantErr: "workers must be positive",
		},
		{
			name:    "bad metrics port",
			mutate:  func(c *Config) { c.Metrics.Port = 99999 },
			wantErr: "metrics.port out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.StageTimeout().Milliseconds(), cfg.Pipeline.StageTimeoutMs)
	assert.Equal(t, cfg.RegistryTimeout().Milliseconds(), cfg.SchemaRegistry.TimeoutMs)
	assert.Equal(t, cfg.DemoInterval().Milliseconds(), cfg.Transport.Simulated.DemoIntervalMs)
}
