package analyze

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/supportstream/ticket"
)

func TestLexiconScorer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"strongly negative", "This is unacceptable, third time broken!", -1},
		{"strongly positive", "Thanks, all good now!", 1},
		{"no polar terms", "Please update my billing address", 0},
		{"mixed", "The product is great but shipping was terrible", 0},
	}

	scorer := NewLexiconScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Score(context.Background(), tt.text)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{-1, ticket.SentimentNegative},
		{-0.1, ticket.SentimentNegative},
		{-0.05, ticket.SentimentNeutral},
		{0, ticket.SentimentNeutral},
		{0.05, ticket.SentimentNeutral},
		{0.1, ticket.SentimentPositive},
		{1, ticket.SentimentPositive},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelFor(tt.score), "score %v", tt.score)
	}
}

func TestUrgencyScore(t *testing.T) {
	angry := UrgencyScore("This is unacceptable, third time broken!", -1)
	assert.GreaterOrEqual(t, angry, 0.6)
	assert.LessOrEqual(t, angry, 1.0)

	calm := UrgencyScore("Thanks, all good now!", 1)
	assert.Equal(t, 0.0, calm)

	urgent := UrgencyScore("URGENT: production system is down", -0.5)
	assert.GreaterOrEqual(t, urgent, 0.35)
}

func TestKeywords(t *testing.T) {
	kw := Keywords("The order arrived broken, the box was broken too")
	assert.Equal(t, []string{"order", "arrived", "broken", "box", "too"}, kw)

	long := Keywords("alpha bravo charlie delta echo foxtrot golf hotel india juliet")
	assert.Len(t, long, 8)

	assert.Empty(t, Keywords("is it of to"))
}

type stubScorer struct {
	score float64
	err   error
}

func (s *stubScorer) Score(_ context.Context, _ string) (float64, error) {
	return s.score, s.err
}

func TestAnalyzeAngryTicket(t *testing.T) {
	a := NewAnalyzer(NewLexiconScorer(), time.Second, "lexicon-v1", nil)

	tk := &ticket.Ticket{
		TicketID:   "T001",
		CustomerID: "C001",
		Subject:    "Broken product",
		Message:    "This is unacceptable, third time broken!",
		Category:   "Shipping",
	}

	pt := a.Analyze(context.Background(), tk)
	assert.Equal(t, ticket.SentimentNegative, pt.SentimentLabel)
	assert.GreaterOrEqual(t, pt.UrgencyScore, 0.6)
	assert.NotEmpty(t, pt.Keywords)
	assert.Equal(t, "lexicon-v1", pt.ProcessingMetadata["model"])
	assert.NotContains(t, pt.ProcessingMetadata, "degraded")
	assert.NotZero(t, pt.ProcessingTimestamp)
}

func TestAnalyzeHappyTicket(t *testing.T) {
	a := NewAnalyzer(NewLexiconScorer(), time.Second, "lexicon-v1", nil)

	tk := &ticket.Ticket{
		TicketID:   "T002",
		CustomerID: "C002",
		Message:    "Thanks, all good now!",
	}

	pt := a.Analyze(context.Background(), tk)
	assert.Equal(t, ticket.SentimentPositive, pt.SentimentLabel)
	assert.Equal(t, 0.0, pt.UrgencyScore)
}

func TestAnalyzeDegradesOnScorerFailure(t *testing.T) {
	a := NewAnalyzer(&stubScorer{err: errors.New("model unavailable")}, time.Second, "stub", nil)

	pt := a.Analyze(context.Background(), &ticket.Ticket{
		TicketID:   "T003",
		CustomerID: "C003",
		Message:    "anything",
	})

	assert.Equal(t, 0.0, pt.SentimentScore)
	assert.Equal(t, ticket.SentimentNeutral, pt.SentimentLabel)
	assert.Equal(t, "true", pt.ProcessingMetadata["degraded"])
}

type slowScorer struct{}

func (slowScorer) Score(ctx context.Context, _ string) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(time.Minute):
		return 1, nil
	}
}

func TestAnalyzeDegradesOnTimeout(t *testing.T) {
	a := NewAnalyzer(slowScorer{}, 20*time.Millisecond, "slow", nil)

	pt := a.Analyze(context.Background(), &ticket.Ticket{
		TicketID:   "T004",
		CustomerID: "C004",
		Message:    "hello",
	})
	assert.Equal(t, "true", pt.ProcessingMetadata["degraded"])
}
