// Package respond generates an AIResponse for every processed ticket.
// Text generation is delegated to a pluggable Responder; when it fails
// or times out the stage falls back to a deterministic template so a
// response is always emitted.
package respond

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360/supportstream/escalate"
	"github.com/c360/supportstream/pkg/timestamp"
	"github.com/c360/supportstream/ticket"
)

// FallbackConfidence is reported when the fallback template is used
const FallbackConfidence = 0.30

// Draft is a responder's proposed reply
type Draft struct {
	Content    string
	Confidence float64
}

// Request carries everything a responder may use to draft a reply
type Request struct {
	Ticket   *ticket.ProcessedTicket
	Decision escalate.Decision
}

// Responder drafts reply text. Implementations may call external
// models and should honor the context deadline.
type Responder interface {
	Respond(ctx context.Context, req Request) (Draft, error)
}

// Stage runs the response stage
type Stage struct {
	responder Responder
	timeout   time.Duration
	model     string
	logger    *slog.Logger
}

// NewStage creates a response stage. A zero timeout disables the
// per-call deadline.
func NewStage(responder Responder, timeout time.Duration, model string, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{
		responder: responder,
		timeout:   timeout,
		model:     model,
		logger:    logger.With("component", "responder"),
	}
}

// Generate produces the AIResponse for a processed ticket. It never
// returns without a response: responder failure takes the fallback
// path.
func (s *Stage) Generate(ctx context.Context, pt *ticket.ProcessedTicket, decision escalate.Decision) *ticket.AIResponse {
	respCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		respCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	meta := map[string]string{}
	draft, err := s.responder.Respond(respCtx, Request{Ticket: pt, Decision: decision})
	if err != nil {
		s.logger.Warn("Responder degraded, using fallback template",
			"ticket_id", pt.TicketID, "error", err)
		draft = fallbackDraft(pt, decision)
		meta["fallback"] = "true"
	}

	responseType := ticket.ResponseStandard
	if decision.Escalate {
		responseType = ticket.ResponseEscalation
	}

	resp := &ticket.AIResponse{
		TicketID:           pt.TicketID,
		CustomerID:         pt.CustomerID,
		ResponseType:       responseType,
		ResponseContent:    draft.Content,
		ConfidenceScore:    draft.Confidence,
		EscalationRequired: decision.Escalate,
		EscalationReason:   decision.Reason,
		PriorityAdjustment: decision.Priority,
		Tags:               responseTags(pt, decision),
		GeneratedTimestamp: timestamp.Now(),
		ModelVersion:       s.model,
		ResponseMetadata:   meta,
	}
	if decision.Escalate {
		resp.SuggestedDepartment = decision.Department
	}
	return resp
}

func responseTags(pt *ticket.ProcessedTicket, decision escalate.Decision) []string {
	tags := []string{"sentiment:" + pt.SentimentLabel, "priority:" + decision.Priority}
	if decision.Escalate {
		tags = append(tags, "escalated")
	}
	if pt.Category != "" {
		tags = append(tags, "category:"+pt.Category)
	}
	return tags
}
