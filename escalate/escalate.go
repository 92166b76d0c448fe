// Package escalate maps sentiment output to a priority level and an
// escalation decision. The mapping is a pure function of its inputs so
// it can be tuned and tested in isolation.
package escalate

import (
	"fmt"

	"github.com/c360/supportstream/config"
	"github.com/c360/supportstream/ticket"
)

// Decision is the escalation outcome for one ticket
type Decision struct {
	Priority   string
	Escalate   bool
	Reason     string
	Department string
}

// Decide maps a sentiment label and urgency score to a decision using
// the configured thresholds. Every input yields exactly one decision.
func Decide(label string, urgency float64, category string, cfg config.ThresholdConfig) Decision {
	if label == ticket.SentimentNegative {
		switch {
		case urgency >= cfg.HighUrgency:
			return Decision{
				Priority: ticket.PriorityHigh,
				Escalate: true,
				Reason: fmt.Sprintf("negative sentiment with urgency %.2f at or above %.2f",
					urgency, cfg.HighUrgency),
				Department: departmentFor(category),
			}
		case urgency >= cfg.MediumUrgency:
			return Decision{Priority: ticket.PriorityMedium}
		default:
			// Mild negatives with no urgency signal stay low priority
			return Decision{Priority: ticket.PriorityLow}
		}
	}

	// Non-negative tickets escalate on urgency alone
	if urgency >= cfg.OverrideUrgency {
		return Decision{
			Priority: ticket.PriorityHigh,
			Escalate: true,
			Reason: fmt.Sprintf("urgency %.2f at or above override threshold %.2f",
				urgency, cfg.OverrideUrgency),
			Department: departmentFor(category),
		}
	}

	return Decision{Priority: ticket.PriorityLow}
}

func departmentFor(category string) string {
	switch category {
	case "Billing", "Payments":
		return "billing-escalations"
	case "Shipping", "Delivery":
		return "logistics-escalations"
	case "Technical", "Bug":
		return "engineering-escalations"
	default:
		return "customer-success"
	}
}
