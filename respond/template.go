package respond

import (
	"context"
	"fmt"
	"strings"

	"github.com/c360/supportstream/escalate"
	"github.com/c360/supportstream/ticket"
)

// TemplateResponder drafts replies from fixed templates keyed on
// sentiment and escalation. It is the demo responder and doubles as
// the fallback when a real model is unavailable.
type TemplateResponder struct{}

// NewTemplateResponder returns the template responder
func NewTemplateResponder() *TemplateResponder {
	return &TemplateResponder{}
}

// Respond implements Responder
func (r *TemplateResponder) Respond(ctx context.Context, req Request) (Draft, error) {
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}

	return Draft{
		Content:    templateContent(req.Ticket, req.Decision),
		Confidence: templateConfidence(req.Ticket),
	}, nil
}

func templateContent(pt *ticket.ProcessedTicket, decision escalate.Decision) string {
	var b strings.Builder

	switch pt.SentimentLabel {
	case ticket.SentimentNegative:
		b.WriteString("We sincerely apologize for the trouble you've experienced. ")
	case ticket.SentimentPositive:
		b.WriteString("Thank you for reaching out, we're glad to hear from you. ")
	default:
		b.WriteString("Thank you for contacting support. ")
	}

	if decision.Escalate {
		fmt.Fprintf(&b,
			"Your ticket %s has been escalated to our %s team and will be handled with high priority. ",
			pt.TicketID, decision.Department)
	} else {
		fmt.Fprintf(&b, "Your ticket %s has been received and our team is reviewing it. ", pt.TicketID)
	}

	b.WriteString("You will hear from us shortly.")
	return b.String()
}

func templateConfidence(pt *ticket.ProcessedTicket) float64 {
	// Polarized text matches the templates better than neutral text
	if pt.SentimentLabel == ticket.SentimentNeutral {
		return 0.55
	}
	return 0.75
}

func fallbackDraft(pt *ticket.ProcessedTicket, decision escalate.Decision) Draft {
	return Draft{
		Content:    templateContent(pt, decision),
		Confidence: FallbackConfidence,
	}
}
