package scoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmchat",
			Subsystem: "chat",
			Name:      "generations_total",
			Help:      "Chat generations by outcome",
		},
		[]string{"outcome"},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "llmchat",
			Subsystem: "chat",
			Name:      "generation_duration_seconds",
			Help:      "Duration of chat generations in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	feedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmchat",
			Subsystem: "chat",
			Name:      "feedback_total",
			Help:      "Feedback submissions by verdict",
		},
		[]string{"verdict"},
	)
)

func registerCollectors() {
	prometheus.MustRegister(generationsTotal, generationDuration, feedbackTotal)
}

// ObserveGeneration records one chat generation.
func ObserveGeneration(d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	generationsTotal.WithLabelValues(outcome).Inc()
	if err == nil {
		generationDuration.Observe(d.Seconds())
	}
}

// ObserveFeedback records one feedback verdict.
func ObserveFeedback(verdict string) {
	if verdict == "" {
		verdict = "unspecified"
	}
	feedbackTotal.WithLabelValues(verdict).Inc()
}
