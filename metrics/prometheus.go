package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindgarden_classifications_total",
			Help: "Total classifications by source and emotion",
		},
		[]string{"source", "emotion"},
	)

	ClassificationConfidence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindgarden_classification_confidence",
			Help:    "Reported classification confidence",
			Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 1.0},
		},
		[]string{"source"},
	)

	ChatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindgarden_chat_turns_total",
			Help: "Total bot turns by intent",
		},
		[]string{"intent"},
	)

	TipOffersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindgarden_tip_offers_total",
			Help: "Tip offers and how they were answered",
		},
		[]string{"outcome"},
	)

	ConversationsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mindgarden_conversations_swept_total",
			Help: "Idle conversations evicted by the sweeper",
		},
	)

	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindgarden_store_errors_total",
			Help: "Persistence failures by operation",
		},
		[]string{"operation"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindgarden_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(ClassificationsTotal)
		prometheus.MustRegister(ClassificationConfidence)
		prometheus.MustRegister(ChatTurnsTotal)
		prometheus.MustRegister(TipOffersTotal)
		prometheus.MustRegister(ConversationsSwept)
		prometheus.MustRegister(StoreErrors)
		prometheus.MustRegister(RequestDuration)
	})
}

func ObserveClassification(source, emotion string, confidence float64) {
	ClassificationsTotal.WithLabelValues(source, emotion).Inc()
	ClassificationConfidence.WithLabelValues(source).Observe(confidence)
}

func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
