// Package retry provides simple exponential backoff retry logic for transient failures.
//
// # Overview
//
// A minimal retry mechanism with exponential backoff for broker connects,
// publish attempts, and schema authority lookups.
//
// # Core Functions
//
//   - Do: Execute function with retry and exponential backoff
//   - DoWithResult: Execute function with retry, returns both result and error
//
// # Configuration Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay (normal operations)
//   - Quick(): 10 attempts, 50ms-1s delay (startup)
//
// # Usage
//
// Basic retry with defaults:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return client.Connect()
//	})
//
// Retry with result:
//
//	schema, err := retry.DoWithResult(ctx, retry.Quick(), func() (string, error) {
//	    return authority.Resolve(ctx, topic)
//	})
//
// Wrap errors with NonRetryable to stop immediately on failures that
// will not succeed on retry:
//
//	return retry.NonRetryable(fmt.Errorf("record rejected: %w", err))
package retry
