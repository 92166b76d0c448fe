package pipeline

import (
	"sync"

	"github.com/c360/supportstream/pkg/ring"
	"github.com/c360/supportstream/ticket"
)

// Ticket lifecycle states
const (
	StateReceived  = "RECEIVED"
	StateAnalyzed  = "ANALYZED"
	StateResponded = "RESPONDED"
	StateFailed    = "FAILED"
)

// Event is one ticket's latest tally contribution
type Event struct {
	TicketID       string `json:"ticket_id"`
	State          string `json:"state"`
	SentimentLabel string `json:"sentiment_label,omitempty"`
	Priority       string `json:"priority,omitempty"`
	Escalated      bool   `json:"escalated"`
	Timestamp      int64  `json:"timestamp"`
}

// Stats is a point-in-time snapshot of the tally for the dashboard
type Stats struct {
	Total        int            `json:"total"`
	BySentiment  map[string]int `json:"by_sentiment"`
	ByPriority   map[string]int `json:"by_priority"`
	ByState      map[string]int `json:"by_state"`
	Escalations  int            `json:"escalations"`
	RecentEvents []Event        `json:"recent_events"`
}

// Tally aggregates ticket outcomes. Updates are keyed by ticket id so
// reprocessing a ticket replaces its prior contribution instead of
// double-counting. A bounded ring buffer keeps the most recent events.
type Tally struct {
	mu      sync.RWMutex
	tickets map[string]Event
	recent  *ring.Ring[Event]
}

// NewTally creates a tally keeping at most recentCap recent events
func NewTally(recentCap int) *Tally {
	if recentCap <= 0 {
		recentCap = 50
	}
	return &Tally{
		tickets: make(map[string]Event),
		recent:  ring.New[Event](recentCap),
	}
}

// Record replaces the ticket's tally contribution and appends the
// event to the recent buffer
func (t *Tally) Record(e Event) {
	if e.TicketID == "" {
		return
	}

	t.mu.Lock()
	t.tickets[e.TicketID] = e
	t.mu.Unlock()

	t.recent.Append(e)
}

// Snapshot returns a deep copy of the current counts and recent
// events, oldest first
func (t *Tally) Snapshot() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := Stats{
		Total:       len(t.tickets),
		BySentiment: make(map[string]int),
		ByPriority:  make(map[string]int),
		ByState:     make(map[string]int),
	}

	for _, e := range t.tickets {
		stats.ByState[e.State]++
		if e.SentimentLabel != "" {
			stats.BySentiment[e.SentimentLabel]++
		}
		if e.Priority != "" {
			stats.ByPriority[e.Priority]++
		}
		if e.Escalated {
			stats.Escalations++
		}
	}

	stats.RecentEvents = t.recent.Items()
	return stats
}

// eventFor builds the tally event for a processed ticket at a state
func eventFor(pt *ticket.ProcessedTicket, state string, escalated bool, ts int64) Event {
	return Event{
		TicketID:       pt.TicketID,
		State:          state,
		SentimentLabel: pt.SentimentLabel,
		Priority:       pt.Priority,
		Escalated:      escalated,
		Timestamp:      ts,
	}
}
