package nlp

import (
	"go-mindgarden/lexicon"
	"go-mindgarden/types"
)

// ClassifyUtterance is the speech and chat classifier. Keywords match as
// substrings, so "goodbye" counts as "good", and categories are checked in
// cascade order: love, positive, negative, calm. Anything else is neutral.
func (c *Classifier) ClassifyUtterance(text string) types.Emotion {
	if r, ok := lexicon.First(c.rules.Utterance, lexicon.NewInput(text)); ok {
		return r.Emotion
	}
	return types.Neutral
}
