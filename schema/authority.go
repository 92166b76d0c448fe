// Package schema implements the schema channel: per-topic schema
// resolution against an HTTP schema authority, schema-bound binary
// framing for resolved topics, and a textual fallback encoding for
// topics whose schema cannot be resolved.
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/c360/supportstream/errors"
)

const contentType = "application/vnd.schemaregistry.v1+json"

// Resolved is a schema authority lookup result
type Resolved struct {
	ID     int
	Schema string
}

// Authority is a client for a Confluent-style schema registry HTTP API.
// Subjects follow the <topic>-value naming convention.
type Authority struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
}

// NewAuthority creates an authority client. Credentials may be empty for
// unauthenticated registries.
func NewAuthority(baseURL, apiKey, apiSecret string, timeout time.Duration) *Authority {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Authority{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: timeout},
	}
}

func (a *Authority) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	if a.apiKey != "" {
		req.SetBasicAuth(a.apiKey, a.apiSecret)
	}
	return a.client.Do(req)
}

// Resolve fetches the latest schema registered for a topic
func (a *Authority) Resolve(ctx context.Context, topic string) (*Resolved, error) {
	url := fmt.Sprintf("%s/subjects/%s-value/versions/latest", a.baseURL, topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Authority", "Resolve", "build request")
	}

	resp, err := a.do(req)
	if err != nil {
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: %v", errors.ErrSchemaUnavailable, err),
			"Authority", "Resolve", "fetch schema")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: status %d: %s", errors.ErrSchemaUnavailable, resp.StatusCode, body),
			"Authority", "Resolve", "fetch schema")
	}

	var payload struct {
		ID     int    `json:"id"`
		Schema string `json:"schema"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: %v", errors.ErrSchemaUnavailable, err),
			"Authority", "Resolve", "decode response")
	}
	if payload.Schema == "" {
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: empty schema in response", errors.ErrSchemaUnavailable),
			"Authority", "Resolve", "decode response")
	}

	return &Resolved{ID: payload.ID, Schema: payload.Schema}, nil
}

// Register registers a JSON Schema for a topic and returns its id
func (a *Authority) Register(ctx context.Context, topic, schemaDoc string) (int, error) {
	url := fmt.Sprintf("%s/subjects/%s-value/versions", a.baseURL, topic)

	body, err := json.Marshal(map[string]string{
		"schema":     schemaDoc,
		"schemaType": "JSON",
	})
	if err != nil {
		return 0, errors.WrapInvalid(err, "Authority", "Register", "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, errors.WrapInvalid(err, "Authority", "Register", "build request")
	}

	resp, err := a.do(req)
	if err != nil {
		return 0, errors.WrapTransient(
			fmt.Errorf("%w: %v", errors.ErrSchemaUnavailable, err),
			"Authority", "Register", "post schema")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, errors.WrapTransient(
			fmt.Errorf("%w: status %d: %s", errors.ErrSchemaUnavailable, resp.StatusCode, raw),
			"Authority", "Register", "post schema")
	}

	var payload struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, errors.WrapTransient(err, "Authority", "Register", "decode response")
	}
	return payload.ID, nil
}
