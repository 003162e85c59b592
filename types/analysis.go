package types

import "time"

// AnalysisResult is the outcome of classifying one journal entry.
type AnalysisResult struct {
	ID          string    `firestore:"-" json:"id"`
	UserID      string    `firestore:"userId" json:"userId,omitempty"`
	Text        string    `firestore:"text" json:"text"`
	Emotion     Emotion   `firestore:"emotion" json:"emotion"`
	Confidence  float64   `firestore:"confidence" json:"confidence"`
	Sentiment   Sentiment `firestore:"sentiment" json:"sentiment"`
	Suggestions []string  `firestore:"suggestions" json:"suggestions"`
	Timestamp   time.Time `firestore:"timestamp" json:"timestamp"`
}

// AudioFeatures are placeholders; no signal processing happens on audio.
type AudioFeatures struct {
	Pitch        float64 `firestore:"pitch" json:"pitch"`
	Energy       float64 `firestore:"energy" json:"energy"`
	SpeakingRate float64 `firestore:"speakingRate" json:"speakingRate"`
}

type VoiceAnalysis struct {
	ID            string        `firestore:"-" json:"id"`
	UserID        string        `firestore:"userId" json:"userId,omitempty"`
	Transcript    string        `firestore:"transcript" json:"transcript"`
	Emotion       Emotion       `firestore:"emotion" json:"emotion"`
	Sentiment     Sentiment     `firestore:"sentiment" json:"sentiment"`
	Confidence    float64       `firestore:"confidence" json:"confidence"`
	Duration      float64       `firestore:"duration" json:"duration"` // seconds
	AudioFeatures AudioFeatures `firestore:"audioFeatures" json:"audioFeatures"`
	Suggestions   []string      `firestore:"suggestions" json:"suggestions"`
	Spoken        string        `firestore:"spoken" json:"spoken"`
	Timestamp     time.Time     `firestore:"timestamp" json:"timestamp"`
}

// MoodSummary aggregates a set of analyses by sentiment.
type MoodSummary struct {
	Positive          int     `json:"positive"`
	Negative          int     `json:"negative"`
	Neutral           int     `json:"neutral"`
	Total             int     `json:"total"`
	PositivityScore   int     `json:"positivityScore"` // percent
	AverageConfidence float64 `json:"averageConfidence"`
}
