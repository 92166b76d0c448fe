// Package analyze computes sentiment, urgency, and keywords for
// support tickets.
package analyze

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/c360/supportstream/pkg/timestamp"
	"github.com/c360/supportstream/ticket"
)

// Scorer produces a sentiment score in [-1, 1] for a piece of text.
// Implementations may call external models and should honor the context
// deadline.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Label cut points. Scores within (-0.1, 0.1) are neutral.
const (
	negativeCutoff = -0.1
	positiveCutoff = 0.1
)

const maxKeywords = 8

// Analyzer runs the sentiment stage
type Analyzer struct {
	scorer  Scorer
	timeout time.Duration
	model   string
	logger  *slog.Logger
}

// NewAnalyzer creates an analyzer around the given scorer. A zero
// timeout disables the per-call deadline.
func NewAnalyzer(scorer Scorer, timeout time.Duration, model string, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		scorer:  scorer,
		timeout: timeout,
		model:   model,
		logger:  logger.With("component", "analyzer"),
	}
}

// Analyze fills the analysis fields of a ProcessedTicket. A scorer
// failure degrades to a neutral result instead of failing the ticket.
func (a *Analyzer) Analyze(ctx context.Context, t *ticket.Ticket) *ticket.ProcessedTicket {
	text := t.Subject + " " + t.Message

	scoreCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		scoreCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	meta := map[string]string{"model": a.model}
	score, err := a.scorer.Score(scoreCtx, text)
	if err != nil {
		a.logger.Warn("Scorer degraded, using neutral result",
			"ticket_id", t.TicketID, "error", err)
		score = 0
		meta["degraded"] = "true"
	}

	return &ticket.ProcessedTicket{
		Ticket:              *t,
		SentimentScore:      score,
		SentimentLabel:      LabelFor(score),
		UrgencyScore:        UrgencyScore(text, score),
		Keywords:            Keywords(text),
		ProcessingTimestamp: timestamp.Now(),
		ProcessingMetadata:  meta,
	}
}

// LabelFor maps a sentiment score to its label
func LabelFor(score float64) string {
	switch {
	case score <= negativeCutoff:
		return ticket.SentimentNegative
	case score >= positiveCutoff:
		return ticket.SentimentPositive
	default:
		return ticket.SentimentNeutral
	}
}

var (
	urgencyTerms = []string{
		"urgent", "immediately", "asap", "critical", "emergency",
		"right now", "deadline", "production", "down", "outage",
	}
	angerTerms = []string{
		"unacceptable", "furious", "angry", "ridiculous", "terrible",
		"worst", "disgusted", "outraged", "fed up",
	}
	repeatedContactRe = regexp.MustCompile(
		`(?i)\b(again|still|second time|third time|multiple times|keep|repeatedly)\b`)
)

func countTerms(text string, terms []string) float64 {
	var n float64
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

// UrgencyScore combines lexical urgency signals with sentiment
// negativity into a [0,1] value.
func UrgencyScore(text string, sentimentScore float64) float64 {
	lower := strings.ToLower(text)

	urgency := 0.35 * min(countTerms(lower, urgencyTerms), 1)
	urgency += 0.25 * min(countTerms(lower, angerTerms), 1)
	if repeatedContactRe.MatchString(text) {
		urgency += 0.2
	}
	urgency += 0.3 * max(0, -sentimentScore)

	return min(max(urgency, 0), 1)
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "but": true, "by": true, "for": true,
	"from": true, "has": true, "have": true, "i": true, "in": true,
	"is": true, "it": true, "its": true, "my": true, "no": true,
	"not": true, "of": true, "on": true, "or": true, "our": true,
	"so": true, "that": true, "the": true, "this": true, "to": true,
	"was": true, "we": true, "with": true, "you": true, "your": true,
	"me": true, "all": true, "now": true, "am": true, "been": true,
}

var tokenRe = regexp.MustCompile(`[a-zA-Z][a-zA-Z']+`)

// Keywords extracts a deduplicated ordered list of salient terms from
// the text. Order follows first appearance.
func Keywords(text string) []string {
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]bool, len(tokens))
	keywords := make([]string, 0, maxKeywords)
	for _, tok := range tokens {
		if len(tok) < 3 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
