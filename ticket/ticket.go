// Package ticket defines the data model flowing through the pipeline:
// raw support tickets, analyzed tickets, and generated responses.
//
// All timestamps are Unix milliseconds. JSON decoding tolerates unknown
// fields so records produced by newer peers remain readable.
package ticket

import (
	"encoding/json"
	"fmt"

	"github.com/c360/supportstream/pkg/timestamp"
)

// Priority levels for a ticket
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Sentiment labels assigned by analysis
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
)

// Response types
const (
	ResponseStandard   = "STANDARD"
	ResponseEscalation = "ESCALATION"
)

// Ticket is a raw customer support ticket as received on the raw topic
type Ticket struct {
	TicketID   string            `json:"ticket_id"`
	CustomerID string            `json:"customer_id"`
	Subject    string            `json:"subject"`
	Message    string            `json:"message"`
	Priority   string            `json:"priority"`
	Category   string            `json:"category"`
	Timestamp  int64             `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// DecodeTicket parses a raw ticket, normalizing the timestamp field.
// Producers send epoch milliseconds, epoch seconds, or an RFC3339
// string; all of them decode to milliseconds.
func DecodeTicket(data []byte) (*Ticket, error) {
	var tk Ticket
	aux := struct {
		*Ticket
		Timestamp any `json:"timestamp"`
	}{Ticket: &tk}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, err
	}
	tk.Timestamp = timestamp.Parse(aux.Timestamp)
	return &tk, nil
}

// Validate checks the required identity and content fields
func (t *Ticket) Validate() error {
	if t.TicketID == "" {
		return fmt.Errorf("ticket_id is required")
	}
	if t.CustomerID == "" {
		return fmt.Errorf("customer_id is required")
	}
	if t.Message == "" {
		return fmt.Errorf("message is required")
	}
	if err := timestamp.Validate(t.Timestamp); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	return nil
}

// ProcessedTicket is a ticket enriched with sentiment analysis results
type ProcessedTicket struct {
	Ticket

	SentimentScore      float64           `json:"sentiment_score"`
	SentimentLabel      string            `json:"sentiment_label"`
	UrgencyScore        float64           `json:"urgency_score"`
	Keywords            []string          `json:"keywords,omitempty"`
	ProcessingTimestamp int64             `json:"processing_timestamp"`
	ProcessingMetadata  map[string]string `json:"processing_metadata,omitempty"`
}

// Validate checks analysis result ranges on top of the base ticket fields
func (p *ProcessedTicket) Validate() error {
	if err := p.Ticket.Validate(); err != nil {
		return err
	}
	if p.SentimentScore < -1 || p.SentimentScore > 1 {
		return fmt.Errorf("sentiment_score out of range: %v", p.SentimentScore)
	}
	switch p.SentimentLabel {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		return fmt.Errorf("unknown sentiment_label %q", p.SentimentLabel)
	}
	if p.UrgencyScore < 0 || p.UrgencyScore > 1 {
		return fmt.Errorf("urgency_score out of range: %v", p.UrgencyScore)
	}
	return nil
}

// AIResponse is the drafted reply for a processed ticket
type AIResponse struct {
	TicketID            string            `json:"ticket_id"`
	CustomerID          string            `json:"customer_id"`
	ResponseType        string            `json:"response_type"`
	ResponseContent     string            `json:"response_content"`
	ConfidenceScore     float64           `json:"confidence_score"`
	EscalationRequired  bool              `json:"escalation_required"`
	EscalationReason    string            `json:"escalation_reason,omitempty"`
	SuggestedDepartment string            `json:"suggested_department,omitempty"`
	PriorityAdjustment  string            `json:"priority_adjustment,omitempty"`
	Tags                []string          `json:"tags,omitempty"`
	GeneratedTimestamp  int64             `json:"generated_timestamp"`
	ModelVersion        string            `json:"model_version"`
	ResponseMetadata    map[string]string `json:"response_metadata,omitempty"`
}

// Validate enforces the escalation invariant: escalation_required and a
// non-empty escalation_reason travel together.
func (r *AIResponse) Validate() error {
	if r.TicketID == "" {
		return fmt.Errorf("ticket_id is required")
	}
	if r.ConfidenceScore < 0 || r.ConfidenceScore > 1 {
		return fmt.Errorf("confidence_score out of range: %v", r.ConfidenceScore)
	}
	switch r.ResponseType {
	case ResponseStandard, ResponseEscalation:
	default:
		return fmt.Errorf("unknown response_type %q", r.ResponseType)
	}
	if r.EscalationRequired && r.EscalationReason == "" {
		return fmt.Errorf("escalation_required without escalation_reason")
	}
	if !r.EscalationRequired && r.EscalationReason != "" {
		return fmt.Errorf("escalation_reason without escalation_required")
	}
	return nil
}
