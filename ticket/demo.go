package ticket

import (
	"fmt"
	"sync/atomic"

	"github.com/c360/supportstream/pkg/timestamp"
)

// demoBody is one canned ticket rotated by the generator
type demoBody struct {
	customerID string
	subject    string
	message    string
	priority   string
	category   string
}

var demoBodies = []demoBody{
	{
		customerID: "C001",
		subject:    "Product broken again",
		message:    "This is unacceptable, third time broken!",
		priority:   PriorityMedium,
		category:   "technical",
	},
	{
		customerID: "C002",
		subject:    "Issue resolved",
		message:    "Thanks, all good now!",
		priority:   PriorityLow,
		category:   "general",
	},
	{
		customerID: "C003",
		subject:    "Refund request",
		message:    "I am furious about these charges, I want a refund immediately or I am canceling my account.",
		priority:   PriorityHigh,
		category:   "billing",
	},
	{
		customerID: "C004",
		subject:    "Production outage",
		message:    "URGENT: our production system is down and we are completely stuck. Please help immediately!",
		priority:   PriorityHigh,
		category:   "technical",
	},
	{
		customerID: "C005",
		subject:    "Billing address",
		message:    "How do I update the billing address on my account?",
		priority:   PriorityLow,
		category:   "account",
	},
}

// DemoGenerator synthesizes support tickets for the simulated transport.
// Bodies rotate through a fixed set while ids and timestamps are fresh
// per ticket, so downstream dedup still sees distinct tickets.
type DemoGenerator struct {
	seq atomic.Int64
}

// NewDemoGenerator returns a generator starting at T001
func NewDemoGenerator() *DemoGenerator {
	return &DemoGenerator{}
}

// Next returns the next synthetic ticket
func (g *DemoGenerator) Next() *Ticket {
	n := g.seq.Add(1)
	body := demoBodies[int(n-1)%len(demoBodies)]

	return &Ticket{
		TicketID:   fmt.Sprintf("T%03d", n),
		CustomerID: body.customerID,
		Subject:    body.subject,
		Message:    body.message,
		Priority:   body.priority,
		Category:   body.category,
		Timestamp:  timestamp.Now(),
		Metadata:   map[string]string{"source": "demo"},
	}
}
