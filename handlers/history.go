package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-mindgarden/db"
	"go-mindgarden/logger"
	"go-mindgarden/nlp"
	"go-mindgarden/suggestions"
	"go-mindgarden/types"
)

// HistoryHandler returns a user's most recent analyses, newest first.
func HistoryHandler(c *gin.Context, store db.Store) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	limit := db.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	results, err := store.ListAnalyses(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list analyses", logger.UserID(userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if results == nil {
		results = []types.AnalysisResult{}
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":   userID,
		"analyses": results,
	})
}

// MoodHandler summarizes every stored analysis of a user.
func MoodHandler(c *gin.Context, store db.Store) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	results, err := store.ListAnalyses(c.Request.Context(), userID, 0)
	if err != nil {
		logger.Error("Failed to list analyses", logger.UserID(userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mood"})
		return
	}

	c.JSON(http.StatusOK, nlp.SummarizeMood(results))
}

func SuggestionsHandler(c *gin.Context, engine *suggestions.Engine) {
	emotion, ok := types.ParseEmotion(c.Param("emotion"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown emotion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"emotion":     emotion,
		"sentiment":   types.SentimentOf(emotion),
		"suggestions": engine.For(emotion),
	})
}
