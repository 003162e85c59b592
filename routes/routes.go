package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-mindgarden/db"
	"go-mindgarden/dialogue"
	"go-mindgarden/handlers"
	"go-mindgarden/logger"
	"go-mindgarden/metrics"
	"go-mindgarden/nlp"
)

func SetupRouter(classifier *nlp.Classifier, sessions *dialogue.Sessions, store db.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Hello, welcome to Mindgarden!",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.MetricsHandler())

	// api routes
	api := r.Group("/api/mindgarden")
	{
		api.POST("/analyze/text", func(c *gin.Context) {
			handlers.AnalyzeTextHandler(c, classifier, store)
		})
		api.POST("/analyze/voice", func(c *gin.Context) {
			handlers.AnalyzeVoiceHandler(c, classifier, store)
		})

		api.POST("/chat", func(c *gin.Context) {
			handlers.ChatHandler(c, sessions, store)
		})
		api.GET("/chat/:conversationId", func(c *gin.Context) {
			handlers.TranscriptHandler(c, store)
		})
		api.DELETE("/chat/:conversationId", func(c *gin.Context) {
			handlers.EndConversationHandler(c, sessions, store)
		})

		api.GET("/history", func(c *gin.Context) {
			handlers.HistoryHandler(c, store)
		})
		api.GET("/mood", func(c *gin.Context) {
			handlers.MoodHandler(c, store)
		})
		api.GET("/suggestions/:emotion", func(c *gin.Context) {
			handlers.SuggestionsHandler(c, classifier.Suggestions())
		})
	}

	return r
}

// requestLogger logs every request through zap and records its duration.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
