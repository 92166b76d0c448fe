package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/supportstream/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := NewCodec(true)
	record := []byte(`{"ticket_id":"T001","customer_id":"C001","message":"help"}`)

	data, err := codec.Encode(MethodTicketReceived, "T001", record)
	require.NoError(t, err)

	var req Request
	require.NoError(t, json.Unmarshal(data, &req))
	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, MethodTicketReceived, req.Method)
	assert.Equal(t, "T001", req.ID)

	method, params, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MethodTicketReceived, method)
	assert.JSONEq(t, string(record), string(params))
}

func TestEncodeGeneratesID(t *testing.T) {
	codec := NewCodec(true)
	data, err := codec.Encode(MethodTicketProcessed, "", []byte(`{}`))
	require.NoError(t, err)

	var req Request
	require.NoError(t, json.Unmarshal(data, &req))
	assert.NotEmpty(t, req.ID)
}

func TestEncodeRejectsUnknownMethod(t *testing.T) {
	codec := NewCodec(true)
	_, err := codec.Encode("ticket.deleted", "T001", []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestEncodeRejectsInvalidParams(t *testing.T) {
	codec := NewCodec(true)
	_, err := codec.Encode(MethodTicketReceived, "T001", []byte(`{broken`))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestDisabledCodecPassesThrough(t *testing.T) {
	codec := NewCodec(false)
	record := []byte(`{"ticket_id":"T001"}`)

	data, err := codec.Encode(MethodTicketReceived, "T001", record)
	require.NoError(t, err)
	assert.Equal(t, record, data)

	method, params, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Empty(t, method)
	assert.Equal(t, record, params)
}

func TestDecodeBareRecord(t *testing.T) {
	codec := NewCodec(true)
	record := []byte(`{"ticket_id":"T001","message":"no envelope here"}`)

	method, params, err := codec.Decode(record)
	require.NoError(t, err)
	assert.Empty(t, method)
	assert.Equal(t, record, params)
}

func TestDecodeErrors(t *testing.T) {
	codec := NewCodec(true)

	tests := []struct {
		name     string
		payload  string
		wantCode int
	}{
		{"not json", `{broken`, CodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"ticket.raw_received","params":{},"id":"1"}`, CodeInvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","params":{},"id":"1"}`, CodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","method":"ticket.vanished","params":{},"id":"1"}`, CodeMethodNotFound},
		{"missing params", `{"jsonrpc":"2.0","method":"ticket.raw_received","id":"1"}`, CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := codec.Decode([]byte(tt.payload))
			require.Error(t, err)

			var rpcErr *Error
			require.ErrorAs(t, err, &rpcErr)
			assert.Equal(t, tt.wantCode, rpcErr.Code)
		})
	}
}

func TestErrorUnwrapClassification(t *testing.T) {
	parseErr := &Error{Code: CodeParseError, Message: "bad"}
	assert.ErrorIs(t, parseErr, errors.ErrEnvelopeParse)
	assert.True(t, errors.IsInvalid(parseErr))

	notFound := &Error{Code: CodeMethodNotFound, Message: "bad"}
	assert.ErrorIs(t, notFound, errors.ErrUnknownMethod)
}

func TestValidMethod(t *testing.T) {
	assert.True(t, ValidMethod(MethodTicketReceived))
	assert.True(t, ValidMethod(MethodTicketProcessed))
	assert.True(t, ValidMethod(MethodResponseGenerated))
	assert.False(t, ValidMethod(""))
	assert.False(t, ValidMethod("ticket.other"))
}
