// Package errors provides standardized error handling patterns for the
// support ticket pipeline.
//
// # Overview
//
// The package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable),
// and Fatal (unrecoverable, stop processing).
//
// Classification lets the pipeline make retry and degradation decisions
// without hardcoded error string matching: a failed publish retries with
// backoff, a malformed envelope is logged and skipped, a bad configuration
// stops startup.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if !connected {
//	    return errors.ErrNoConnection
//	}
//
// Wrap errors with component context:
//
//	if err := channel.Encode(topic, record); err != nil {
//	    return errors.Wrap(err, "Channel", "Encode", "frame record")
//	}
//
// Check classification for retry logic:
//
//	if err := publish(); err != nil && errors.IsTransient(err) {
//	    // retry with backoff
//	}
//
// The classification system supports errors.Is, errors.As, and error
// wrapping chains throughout.
package errors
