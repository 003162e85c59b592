package nlp

import (
	"fmt"

	"github.com/google/uuid"

	"go-mindgarden/types"
)

const VoiceConfidence = 0.9

// Placeholder features. Nothing is derived from real audio.
var placeholderFeatures = types.AudioFeatures{
	Pitch:        120,
	Energy:       50,
	SpeakingRate: 2.5,
}

// AnalyzeVoice classifies a recognized speech transcript.
// durationSeconds is the recording length reported by the speech source.
func (c *Classifier) AnalyzeVoice(transcript string, durationSeconds float64) types.VoiceAnalysis {
	emotion := c.ClassifyUtterance(transcript)
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	return types.VoiceAnalysis{
		ID:            uuid.NewString(),
		Transcript:    transcript,
		Emotion:       emotion,
		Sentiment:     types.SentimentOf(emotion),
		Confidence:    VoiceConfidence,
		Duration:      durationSeconds,
		AudioFeatures: placeholderFeatures,
		Suggestions:   c.suggest.For(emotion),
		Spoken:        fmt.Sprintf("You sound %s", emotion),
		Timestamp:     c.now().UTC(),
	}
}
