package types

import "strings"

type Emotion string

const (
	Happy      Emotion = "happy"
	Sad        Emotion = "sad"
	Anxious    Emotion = "anxious"
	Calm       Emotion = "calm"
	Frustrated Emotion = "frustrated"
	Excited    Emotion = "excited"
	Stressed   Emotion = "stressed"
	Content    Emotion = "content"
	Love       Emotion = "love"
	Grateful   Emotion = "grateful"
	Confident  Emotion = "confident"
	Neutral    Emotion = "neutral"
)

// AllEmotions lists every category in a stable order.
var AllEmotions = []Emotion{
	Happy, Sad, Anxious, Calm, Frustrated, Excited,
	Stressed, Content, Love, Grateful, Confident, Neutral,
}

var validEmotions = func() map[Emotion]bool {
	m := make(map[Emotion]bool, len(AllEmotions))
	for _, e := range AllEmotions {
		m[e] = true
	}
	return m
}()

func (e Emotion) IsValid() bool {
	return validEmotions[e]
}

// ParseEmotion accepts any casing and surrounding whitespace.
func ParseEmotion(s string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	return e, e.IsValid()
}

type Sentiment string

const (
	Positive        Sentiment = "positive"
	Negative        Sentiment = "negative"
	NeutralPolarity Sentiment = "neutral"
)

var (
	positiveEmotions = map[Emotion]bool{Happy: true, Calm: true, Excited: true, Content: true, Love: true}
	negativeEmotions = map[Emotion]bool{Sad: true, Anxious: true, Frustrated: true, Stressed: true}
)

// SentimentOf derives the coarse polarity of an emotion. Grateful, confident
// and neutral sit outside both sets and resolve to neutral.
func SentimentOf(e Emotion) Sentiment {
	if positiveEmotions[e] {
		return Positive
	}
	if negativeEmotions[e] {
		return Negative
	}
	return NeutralPolarity
}
