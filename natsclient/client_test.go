package natsclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionStatusString(t *testing.T) {
	tests := []struct {
		status ConnectionStatus
		want   string
	}{
		{StatusDisconnected, "disconnected"},
		{StatusConnecting, "connecting"},
		{StatusConnected, "connected"},
		{StatusReconnecting, "reconnecting"},
		{StatusCircuitOpen, "circuit_open"},
		{ConnectionStatus(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", client.URL())
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.False(t, client.IsHealthy())
	assert.Equal(t, time.Second, client.Backoff())
}

func TestClientOptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  ClientOption
	}{
		{"nil logger", WithLogger(nil)},
		{"zero reconnect wait", WithReconnectWait(0)},
		{"negative connect timeout", WithConnectTimeout(-time.Second)},
		{"zero drain timeout", WithDrainTimeout(0)},
		{"zero circuit threshold", WithCircuitThreshold(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient("nats://localhost:4222", tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	var statuses []ConnectionStatus
	client, err := NewClient("nats://localhost:4222",
		WithCircuitThreshold(3),
		WithStatusCallback(func(s ConnectionStatus) {
			statuses = append(statuses, s)
		}),
	)
	require.NoError(t, err)

	client.recordFailure()
	client.recordFailure()
	assert.NotEqual(t, StatusCircuitOpen, client.Status())

	client.recordFailure()
	assert.Equal(t, StatusCircuitOpen, client.Status())
	assert.Contains(t, statuses, StatusCircuitOpen)

	// Backoff doubled from the initial second
	assert.Equal(t, 2*time.Second, client.Backoff())
}

func TestCircuitBreakerResets(t *testing.T) {
	client, err := NewClient("nats://localhost:4222", WithCircuitThreshold(2))
	require.NoError(t, err)

	client.recordFailure()
	client.recordFailure()
	require.Equal(t, StatusCircuitOpen, client.Status())

	client.resetCircuit()
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.Equal(t, int32(0), client.Failures())
	assert.Equal(t, time.Second, client.Backoff())
}

func TestBackoffCapped(t *testing.T) {
	client, err := NewClient("nats://localhost:4222", WithCircuitThreshold(1))
	require.NoError(t, err)
	client.maxBackoff = 4 * time.Second

	for i := 0; i < 10; i++ {
		client.recordFailure()
	}
	assert.LessOrEqual(t, client.Backoff(), 4*time.Second)
}
