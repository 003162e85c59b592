package nlp

import (
	"math"

	"go-mindgarden/types"
)

// SummarizeMood counts analyses by sentiment and averages their confidence.
func SummarizeMood(results []types.AnalysisResult) types.MoodSummary {
	var summary types.MoodSummary
	var totalConfidence float64

	for _, r := range results {
		switch r.Sentiment {
		case types.Positive:
			summary.Positive++
		case types.Negative:
			summary.Negative++
		default:
			summary.Neutral++
		}
		totalConfidence += r.Confidence
		summary.Total++
	}

	if summary.Total == 0 {
		return summary
	}

	summary.PositivityScore = int(math.Round(float64(summary.Positive) / float64(summary.Total) * 100))
	summary.AverageConfidence = totalConfidence / float64(summary.Total)
	return summary
}
