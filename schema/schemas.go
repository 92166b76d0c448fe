package schema

// JSON Schema documents for the three pipeline record types. Registered
// with the authority at bootstrap and used for validation before
// schema-bound encoding. additionalProperties stays open so peers can
// add fields without breaking older consumers.

// TicketSchema describes records on the raw topic
const TicketSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "SupportTicket",
  "type": "object",
  "properties": {
    "ticket_id": {"type": "string", "minLength": 1},
    "customer_id": {"type": "string", "minLength": 1},
    "subject": {"type": "string"},
    "message": {"type": "string", "minLength": 1},
    "priority": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]},
    "category": {"type": "string"},
    "timestamp": {"type": "integer", "minimum": 0},
    "metadata": {"type": "object", "additionalProperties": {"type": "string"}}
  },
  "required": ["ticket_id", "customer_id", "message"],
  "additionalProperties": true
}`

// ProcessedTicketSchema describes records on the processed topic
const ProcessedTicketSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "ProcessedTicket",
  "type": "object",
  "properties": {
    "ticket_id": {"type": "string", "minLength": 1},
    "customer_id": {"type": "string", "minLength": 1},
    "subject": {"type": "string"},
    "message": {"type": "string", "minLength": 1},
    "priority": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]},
    "category": {"type": "string"},
    "timestamp": {"type": "integer", "minimum": 0},
    "metadata": {"type": "object", "additionalProperties": {"type": "string"}},
    "sentiment_score": {"type": "number", "minimum": -1, "maximum": 1},
    "sentiment_label": {"type": "string", "enum": ["POSITIVE", "NEGATIVE", "NEUTRAL"]},
    "urgency_score": {"type": "number", "minimum": 0, "maximum": 1},
    "keywords": {"type": "array", "items": {"type": "string"}},
    "processing_timestamp": {"type": "integer", "minimum": 0},
    "processing_metadata": {"type": "object", "additionalProperties": {"type": "string"}}
  },
  "required": ["ticket_id", "customer_id", "message", "sentiment_score", "sentiment_label", "urgency_score"],
  "additionalProperties": true
}`

// AIResponseSchema describes records on the response topic
const AIResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "AIResponse",
  "type": "object",
  "properties": {
    "ticket_id": {"type": "string", "minLength": 1},
    "customer_id": {"type": "string", "minLength": 1},
    "response_type": {"type": "string", "enum": ["STANDARD", "ESCALATION"]},
    "response_content": {"type": "string", "minLength": 1},
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 1},
    "escalation_required": {"type": "boolean"},
    "escalation_reason": {"type": "string"},
    "suggested_department": {"type": "string"},
    "priority_adjustment": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "generated_timestamp": {"type": "integer", "minimum": 0},
    "model_version": {"type": "string"},
    "response_metadata": {"type": "object", "additionalProperties": {"type": "string"}}
  },
  "required": ["ticket_id", "customer_id", "response_type", "response_content", "confidence_score"],
  "additionalProperties": true
}`
