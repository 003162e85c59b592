package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-mindgarden/db"
	"go-mindgarden/logger"
	"go-mindgarden/metrics"
	"go-mindgarden/nlp"
)

// AnalyzeTextHandler classifies a journal entry and stores the result.
func AnalyzeTextHandler(c *gin.Context, classifier *nlp.Classifier, store db.Store) {
	var request struct {
		UserID string `json:"userId"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(request.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result := classifier.ClassifyText(request.Text)
	result.UserID = request.UserID
	metrics.ObserveClassification("text", string(result.Emotion), result.Confidence)

	// The result is returned even if it could not be stored.
	if err := store.SaveAnalysis(c.Request.Context(), result); err != nil {
		metrics.StoreErrors.WithLabelValues("save_analysis").Inc()
		logger.Error("Failed to save analysis", zap.String("analysis_id", result.ID), zap.Error(err))
	}

	logger.Debug("Text analyzed",
		logger.UserID(result.UserID),
		zap.String("emotion", string(result.Emotion)),
		zap.Float64("confidence", result.Confidence),
	)
	c.JSON(http.StatusOK, result)
}

// AnalyzeVoiceHandler classifies a speech transcript. Audio itself never reaches the server.
func AnalyzeVoiceHandler(c *gin.Context, classifier *nlp.Classifier, store db.Store) {
	var request struct {
		UserID          string  `json:"userId"`
		Transcript      string  `json:"transcript"`
		DurationSeconds float64 `json:"durationSeconds"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(request.Transcript) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transcript is required"})
		return
	}

	voice := classifier.AnalyzeVoice(request.Transcript, request.DurationSeconds)
	voice.UserID = request.UserID
	metrics.ObserveClassification("voice", string(voice.Emotion), voice.Confidence)

	if err := store.SaveVoiceAnalysis(c.Request.Context(), voice); err != nil {
		metrics.StoreErrors.WithLabelValues("save_voice_analysis").Inc()
		logger.Error("Failed to save voice analysis", zap.String("analysis_id", voice.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, voice)
}
