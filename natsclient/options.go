package natsclient

import (
	"fmt"
	"time"
)

// Logger interface for NATS client logging
type Logger interface {
	Printf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// defaultLogger is a no-op logger used when none is provided
type defaultLogger struct{}

func (l *defaultLogger) Printf(format string, v ...interface{}) {}
func (l *defaultLogger) Errorf(format string, v ...interface{}) {}
func (l *defaultLogger) Debugf(format string, v ...interface{}) {}

// ClientOption configures a Client
type ClientOption func(*Client) error

// WithLogger sets the logger for the client
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithCredentials sets username and password authentication
func WithCredentials(username, password string) ClientOption {
	return func(c *Client) error {
		c.username = username
		c.password = password
		return nil
	}
}

// WithClientName sets the connection name reported to the server
func WithClientName(name string) ClientOption {
	return func(c *Client) error {
		c.clientName = name
		return nil
	}
}

// WithMaxReconnects sets the maximum reconnect attempts (-1 for unlimited)
func WithMaxReconnects(max int) ClientOption {
	return func(c *Client) error {
		c.maxReconnects = max
		return nil
	}
}

// WithReconnectWait sets the wait time between reconnect attempts
func WithReconnectWait(wait time.Duration) ClientOption {
	return func(c *Client) error {
		if wait <= 0 {
			return fmt.Errorf("reconnect wait must be positive")
		}
		c.reconnectWait = wait
		return nil
	}
}

// WithConnectTimeout sets the connection timeout
func WithConnectTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("connect timeout must be positive")
		}
		c.timeout = timeout
		return nil
	}
}

// WithDrainTimeout sets the drain timeout used during Close
func WithDrainTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("drain timeout must be positive")
		}
		c.drainTimeout = timeout
		return nil
	}
}

// WithCircuitThreshold sets the failure count that opens the circuit
func WithCircuitThreshold(threshold int32) ClientOption {
	return func(c *Client) error {
		if threshold <= 0 {
			return fmt.Errorf("circuit threshold must be positive")
		}
		c.circuitThreshold = threshold
		return nil
	}
}

// WithStatusCallback sets a callback invoked on status changes
func WithStatusCallback(cb func(ConnectionStatus)) ClientOption {
	return func(c *Client) error {
		c.onStatusChange = cb
		return nil
	}
}
