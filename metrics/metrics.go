package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_decisions_total",
			Help: "Total number of loan decisions by outcome",
		},
		[]string{"outcome"},
	)

	DecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loan_decision_duration_seconds",
			Help:    "Time spent scoring an application",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)

	InsightRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_insight_requests_total",
			Help: "Insight generation attempts by result (ok, empty, error, cached)",
		},
		[]string{"result"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
	)
)

// Outcome maps an approval flag to the decision label value.
func Outcome(approved bool) string {
	if approved {
		return "approved"
	}
	return "rejected"
}
