package nlp

import (
	"time"

	"github.com/google/uuid"

	"go-mindgarden/lexicon"
	"go-mindgarden/suggestions"
	"go-mindgarden/types"
)

const (
	// MatchConfidence is reported when a lexicon keyword matched directly.
	MatchConfidence = 0.85
	// DefaultConfidence signals that nothing in the text matched.
	DefaultConfidence = 0.5
)

// Classifier runs both rule-based classifiers over one rule table.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules   *lexicon.Ruleset
	suggest *suggestions.Engine
	now     func() time.Time
}

func NewClassifier(rs *lexicon.Ruleset, s *suggestions.Engine) *Classifier {
	return &Classifier{rules: rs, suggest: s, now: time.Now}
}

func (c *Classifier) Suggestions() *suggestions.Engine {
	return c.suggest
}

// ClassifyText is the journal classifier: the first lexicon entry, in table
// order, that appears as a whole token decides the emotion. Callers are
// expected to reject blank text; it classifies as neutral here.
func (c *Classifier) ClassifyText(text string) types.AnalysisResult {
	emotion := types.Neutral
	confidence := DefaultConfidence

	if r, ok := lexicon.First(c.rules.Lexicon, lexicon.NewInput(text)); ok {
		emotion = r.Emotion
		confidence = MatchConfidence
	}

	return types.AnalysisResult{
		ID:          uuid.NewString(),
		Text:        text,
		Emotion:     emotion,
		Confidence:  confidence,
		Sentiment:   types.SentimentOf(emotion),
		Suggestions: c.suggest.For(emotion),
		Timestamp:   c.now().UTC(),
	}
}
