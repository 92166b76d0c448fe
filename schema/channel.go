package schema

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/supportstream/envelope"
	"github.com/c360/supportstream/errors"
)

// markerSchemaBound is the leading byte of schema-bound binary framing.
// Textual payloads always start with a JSON character, so the zero byte
// is unambiguous.
const markerSchemaBound = 0x00

// frameHeaderLen is marker byte plus big-endian uint32 schema id
const frameHeaderLen = 5

// TopicSpec declares how one topic is encoded: its envelope method for
// the textual path and its schema document for the schema-bound path.
type TopicSpec struct {
	Method   string
	Document string
}

// PipelineSpecs returns the topic specs for the three pipeline topics
func PipelineSpecs(rawTopic, processedTopic, responseTopic string) map[string]TopicSpec {
	return map[string]TopicSpec{
		rawTopic:       {Method: envelope.MethodTicketReceived, Document: TicketSchema},
		processedTopic: {Method: envelope.MethodTicketProcessed, Document: ProcessedTicketSchema},
		responseTopic:  {Method: envelope.MethodResponseGenerated, Document: AIResponseSchema},
	}
}

// binding is the resolved encoding mode for one topic, fixed for the
// process lifetime
type binding struct {
	fallback  bool
	schemaID  int
	validator *gojsonschema.Schema
}

// Channel encodes and decodes topic payloads. First use of a topic
// resolves its schema against the authority; failure switches the topic
// to the textual fallback encoding, logged once and cached so the
// authority is not hammered per message.
type Channel struct {
	authority *Authority // nil means no authority configured
	codec     *envelope.Codec
	specs     map[string]TopicSpec
	logger    *slog.Logger

	mu       sync.Mutex
	bindings map[string]*binding
}

// NewChannel creates a channel. A nil authority puts every topic on the
// fallback encoding from the start.
func NewChannel(authority *Authority, codec *envelope.Codec, specs map[string]TopicSpec, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		authority: authority,
		codec:     codec,
		specs:     specs,
		logger:    logger.With("component", "schema_channel"),
		bindings:  make(map[string]*binding),
	}
}

func (c *Channel) spec(topic string) (TopicSpec, error) {
	s, ok := c.specs[topic]
	if !ok {
		return TopicSpec{}, errors.WrapInvalid(
			fmt.Errorf("topic %q: %w", topic, errors.ErrUnknownTopic),
			"Channel", "spec", "look up topic")
	}
	return s, nil
}

// binding resolves the encoding mode for a topic, caching the outcome
func (c *Channel) binding(ctx context.Context, topic string) (*binding, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.bindings[topic]; ok {
		return b, nil
	}

	spec, err := c.spec(topic)
	if err != nil {
		return nil, err
	}

	b := c.resolveBinding(ctx, topic, spec)
	c.bindings[topic] = b
	return b, nil
}

func (c *Channel) resolveBinding(ctx context.Context, topic string, spec TopicSpec) *binding {
	if c.authority == nil {
		c.logger.Warn("no schema authority configured, using textual encoding",
			"topic", topic)
		return &binding{fallback: true}
	}

	resolved, err := c.authority.Resolve(ctx, topic)
	if err != nil {
		c.logger.Warn("schema resolution failed, falling back to textual encoding",
			"topic", topic, "error", err)
		return &binding{fallback: true}
	}

	validator, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(resolved.Schema))
	if err != nil {
		c.logger.Warn("resolved schema does not compile, falling back to textual encoding",
			"topic", topic, "schema_id", resolved.ID, "error", err)
		return &binding{fallback: true}
	}

	c.logger.Info("schema resolved", "topic", topic, "schema_id", resolved.ID)
	return &binding{schemaID: resolved.ID, validator: validator}
}

// Encode frames a record for a topic. Schema-bound topics validate the
// record and emit binary framing; fallback topics emit the textual
// encoding through the envelope codec.
func (c *Channel) Encode(ctx context.Context, topic, id string, record []byte) ([]byte, error) {
	b, err := c.binding(ctx, topic)
	if err != nil {
		return nil, err
	}

	if b.fallback {
		spec, err := c.spec(topic)
		if err != nil {
			return nil, err
		}
		return c.codec.Encode(spec.Method, id, record)
	}

	result, err := b.validator.Validate(gojsonschema.NewBytesLoader(record))
	if err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrInvalidRecord, err),
			"Channel", "Encode", "validate record")
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			details = append(details, re.String())
		}
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrSchemaMismatch, strings.Join(details, "; ")),
			"Channel", "Encode", "validate record")
	}

	framed := make([]byte, frameHeaderLen+len(record))
	framed[0] = markerSchemaBound
	binary.BigEndian.PutUint32(framed[1:frameHeaderLen], uint32(b.schemaID)) // #nosec G115 - registry ids fit uint32
	copy(framed[frameHeaderLen:], record)
	return framed, nil
}

// Decode unframes a payload from a topic, dispatching on the leading
// byte. Consumers handle streams that switch encodings across producer
// restarts, so decoding never consults this process's own binding.
func (c *Channel) Decode(topic string, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("empty payload: %w", errors.ErrFramingCorrupted),
			"Channel", "Decode", "inspect framing")
	}

	if payload[0] == markerSchemaBound {
		if len(payload) < frameHeaderLen {
			return nil, errors.WrapInvalid(
				fmt.Errorf("truncated frame header: %w", errors.ErrFramingCorrupted),
				"Channel", "Decode", "read frame header")
		}
		record := payload[frameHeaderLen:]
		if !json.Valid(record) {
			return nil, errors.WrapInvalid(
				fmt.Errorf("frame body not valid JSON: %w", errors.ErrFramingCorrupted),
				"Channel", "Decode", "parse frame body")
		}
		return record, nil
	}

	method, record, err := c.codec.Decode(payload)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Channel", "Decode", "unwrap envelope")
	}
	if method != "" {
		spec, specErr := c.spec(topic)
		if specErr != nil {
			return nil, specErr
		}
		if method != spec.Method {
			return nil, errors.WrapInvalid(
				fmt.Errorf("method %q on topic %q: %w", method, topic, errors.ErrUnknownMethod),
				"Channel", "Decode", "match method to topic")
		}
	}
	return record, nil
}

// RegisterSchemas registers the embedded schema documents for all topics
// known to the channel. Failures are non-fatal; affected topics resolve
// to the fallback encoding on first use.
func (c *Channel) RegisterSchemas(ctx context.Context) {
	if c.authority == nil {
		return
	}
	for topic, spec := range c.specs {
		id, err := c.authority.Register(ctx, topic, spec.Document)
		if err != nil {
			c.logger.Warn("schema registration failed", "topic", topic, "error", err)
			continue
		}
		c.logger.Info("schema registered", "topic", topic, "schema_id", id)
	}
}
