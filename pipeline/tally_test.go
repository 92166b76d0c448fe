package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/supportstream/ticket"
)

func TestTallyCounts(t *testing.T) {
	tally := NewTally(10)

	tally.Record(Event{TicketID: "T001", State: StateResponded,
		SentimentLabel: ticket.SentimentNegative, Priority: ticket.PriorityHigh, Escalated: true})
	tally.Record(Event{TicketID: "T002", State: StateResponded,
		SentimentLabel: ticket.SentimentPositive, Priority: ticket.PriorityLow})
	tally.Record(Event{TicketID: "T003", State: StateFailed,
		SentimentLabel: ticket.SentimentNeutral, Priority: ticket.PriorityLow})

	stats := tally.Snapshot()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByState[StateResponded])
	assert.Equal(t, 1, stats.ByState[StateFailed])
	assert.Equal(t, 1, stats.BySentiment[ticket.SentimentNegative])
	assert.Equal(t, 1, stats.BySentiment[ticket.SentimentPositive])
	assert.Equal(t, 2, stats.ByPriority[ticket.PriorityLow])
	assert.Equal(t, 1, stats.Escalations)
}

func TestTallyReplacesByTicketID(t *testing.T) {
	tally := NewTally(10)

	tally.Record(Event{TicketID: "T001", State: StateReceived})
	tally.Record(Event{TicketID: "T001", State: StateAnalyzed,
		SentimentLabel: ticket.SentimentNegative, Priority: ticket.PriorityMedium})
	tally.Record(Event{TicketID: "T001", State: StateResponded,
		SentimentLabel: ticket.SentimentNegative, Priority: ticket.PriorityMedium})

	stats := tally.Snapshot()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByState[StateResponded])
	assert.Zero(t, stats.ByState[StateReceived])
	assert.Equal(t, 1, stats.BySentiment[ticket.SentimentNegative])

	// Reprocessing replaces rather than double-counts
	tally.Record(Event{TicketID: "T001", State: StateResponded,
		SentimentLabel: ticket.SentimentNegative, Priority: ticket.PriorityMedium})
	stats = tally.Snapshot()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByState[StateResponded])
}

func TestTallyRecentBuffer(t *testing.T) {
	tally := NewTally(3)

	for i := 1; i <= 5; i++ {
		tally.Record(Event{TicketID: fmt.Sprintf("T%03d", i), State: StateResponded, Timestamp: int64(i)})
	}

	stats := tally.Snapshot()
	assert.Equal(t, 5, stats.Total)
	assert.Len(t, stats.RecentEvents, 3)
	assert.Equal(t, "T003", stats.RecentEvents[0].TicketID)
	assert.Equal(t, "T005", stats.RecentEvents[2].TicketID)
}

func TestTallyIgnoresEmptyID(t *testing.T) {
	tally := NewTally(3)
	tally.Record(Event{State: StateReceived})
	assert.Zero(t, tally.Snapshot().Total)
}

func TestSnapshotIsolation(t *testing.T) {
	tally := NewTally(3)
	tally.Record(Event{TicketID: "T001", State: StateResponded,
		SentimentLabel: ticket.SentimentPositive})

	stats := tally.Snapshot()
	stats.BySentiment[ticket.SentimentPositive] = 99
	stats.RecentEvents[0].TicketID = "mutated"

	fresh := tally.Snapshot()
	assert.Equal(t, 1, fresh.BySentiment[ticket.SentimentPositive])
	assert.Equal(t, "T001", fresh.RecentEvents[0].TicketID)
}
