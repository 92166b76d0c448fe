package analyze

import (
	"context"
	"regexp"
	"strings"
)

var positiveLexicon = map[string]bool{
	"good": true, "great": true, "excellent": true, "thanks": true,
	"thank": true, "awesome": true, "love": true, "perfect": true,
	"happy": true, "resolved": true, "helpful": true, "wonderful": true,
	"appreciate": true, "fantastic": true, "pleased": true, "fixed": true,
}

var negativeLexicon = map[string]bool{
	"bad": true, "terrible": true, "awful": true, "broken": true,
	"unacceptable": true, "angry": true, "furious": true, "worst": true,
	"horrible": true, "useless": true, "disappointed": true, "refund": true,
	"ridiculous": true, "frustrated": true, "failed": true, "wrong": true,
	"slow": true, "crash": true, "down": true, "outage": true,
}

var wordRe = regexp.MustCompile(`[a-zA-Z']+`)

// LexiconScorer scores text by counting polar terms. The score is
// (positive - negative) / (positive + negative), or zero when no
// polar term appears.
type LexiconScorer struct{}

// NewLexiconScorer returns the default lexical scorer
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{}
}

// Score implements Scorer
func (s *LexiconScorer) Score(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var pos, neg float64
	for _, word := range wordRe.FindAllString(strings.ToLower(text), -1) {
		switch {
		case positiveLexicon[word]:
			pos++
		case negativeLexicon[word]:
			neg++
		}
	}

	if pos+neg == 0 {
		return 0, nil
	}
	return (pos - neg) / (pos + neg), nil
}
