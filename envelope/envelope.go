// Package envelope implements the JSON-RPC 2.0 message envelope used on
// the textual encoding path. Producers wrap records as requests with a
// pipeline method name; consumers unwrap them and fall back to bare
// records when the envelope is disabled.
package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/c360/supportstream/errors"
)

// Version is the JSON-RPC protocol version
const Version = "2.0"

// Pipeline method names, one per topic hop
const (
	MethodTicketReceived    = "ticket.raw_received"
	MethodTicketProcessed   = "ticket.processed"
	MethodResponseGenerated = "ai.response_generated"
)

// JSON-RPC 2.0 error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// Implementation-defined server errors
	CodeServerErrorMin = -32099
	CodeServerErrorMax = -32000
)

// Error is a JSON-RPC 2.0 error object
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Unwrap maps envelope errors onto the platform error taxonomy
func (e *Error) Unwrap() error {
	switch e.Code {
	case CodeParseError:
		return errors.ErrEnvelopeParse
	case CodeInvalidRequest, CodeInvalidParams:
		return errors.ErrInvalidRequest
	case CodeMethodNotFound:
		return errors.ErrUnknownMethod
	default:
		return nil
	}
}

// Request is a JSON-RPC 2.0 request carrying one pipeline record in params
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      string          `json:"id"`
}

// ValidMethod reports whether method is one of the pipeline methods
func ValidMethod(method string) bool {
	switch method {
	case MethodTicketReceived, MethodTicketProcessed, MethodResponseGenerated:
		return true
	}
	return false
}

// Codec encodes and decodes the envelope. With Enabled false, Encode
// passes records through untouched and Decode treats every payload as a
// bare record, so both peers configured the same way round-trip
// losslessly.
type Codec struct {
	enabled bool
}

// NewCodec creates a codec; enabled selects envelope wrapping
func NewCodec(enabled bool) *Codec {
	return &Codec{enabled: enabled}
}

// Enabled reports whether envelope wrapping is active
func (c *Codec) Enabled() bool {
	return c.enabled
}

// Encode wraps params in a request envelope. The id keys the request;
// producers pass the ticket id, an empty id gets a fresh uuid.
func (c *Codec) Encode(method, id string, params []byte) ([]byte, error) {
	if !c.enabled {
		return params, nil
	}

	if !ValidMethod(method) {
		return nil, errors.WrapInvalid(
			fmt.Errorf("method %q: %w", method, errors.ErrUnknownMethod),
			"Codec", "Encode", "validate method")
	}
	if !json.Valid(params) {
		return nil, errors.WrapInvalid(
			fmt.Errorf("params not valid JSON: %w", errors.ErrInvalidRecord),
			"Codec", "Encode", "validate params")
	}
	if id == "" {
		id = uuid.NewString()
	}

	req := Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      id,
	}
	data, err := json.Marshal(&req)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Codec", "Encode", "marshal request")
	}
	return data, nil
}

// Decode unwraps a payload. Enveloped payloads return their method and
// params; bare records return an empty method and the whole payload.
// Malformed payloads return an *Error with the matching JSON-RPC code.
func (c *Codec) Decode(data []byte) (method string, params []byte, err error) {
	if !json.Valid(data) {
		return "", nil, &Error{Code: CodeParseError, Message: "payload is not valid JSON"}
	}

	// Peek for the envelope marker field
	var probe struct {
		JSONRPC *string `json:"jsonrpc"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.JSONRPC == nil {
		// Bare record
		return "", data, nil
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return "", nil, &Error{Code: CodeParseError, Message: err.Error()}
	}
	if req.JSONRPC != Version {
		return "", nil, &Error{
			Code:    CodeInvalidRequest,
			Message: fmt.Sprintf("unsupported jsonrpc version %q", req.JSONRPC),
		}
	}
	if req.Method == "" {
		return "", nil, &Error{Code: CodeInvalidRequest, Message: "missing method"}
	}
	if !ValidMethod(req.Method) {
		return "", nil, &Error{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("unknown method %q", req.Method),
		}
	}
	if len(req.Params) == 0 {
		return "", nil, &Error{Code: CodeInvalidParams, Message: "missing params"}
	}

	return req.Method, req.Params, nil
}
