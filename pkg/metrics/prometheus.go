package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements the Recorder interface using Prometheus metrics.
type PrometheusRecorder struct {
	truncationsTotal *prometheus.CounterVec
	messagesEvicted  *prometheus.CounterVec
	tokensEvicted    *prometheus.CounterVec
	overBudgetTotal  *prometheus.CounterVec
	duration         *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new Prometheus-based metrics recorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		truncationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_truncations_total",
				Help: "Total number of truncation passes by model and outcome",
			},
			[]string{"model", "outcome"},
		),
		messagesEvicted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_messages_evicted_total",
				Help: "Total number of messages evicted by truncation",
			},
			[]string{"model"},
		),
		tokensEvicted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_tokens_evicted_total",
				Help: "Total estimated tokens evicted by truncation",
			},
			[]string{"model"},
		),
		overBudgetTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_over_budget_total",
				Help: "Truncation passes that ended above the token budget",
			},
			[]string{"model"},
		),
		duration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "context_truncation_duration_seconds",
				Help:    "Duration of truncation passes in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}
}

// ObserveTruncation records metrics for a completed truncation pass.
func (p *PrometheusRecorder) ObserveTruncation(model string, removedMessages, evictedTokens int, budgetMet bool, duration time.Duration) {
	outcome := "fit"
	if !budgetMet {
		outcome = "over_budget"
	}
	p.truncationsTotal.WithLabelValues(model, outcome).Inc()
	p.messagesEvicted.WithLabelValues(model).Add(float64(removedMessages))
	p.tokensEvicted.WithLabelValues(model).Add(float64(evictedTokens))
	p.duration.WithLabelValues(model).Observe(duration.Seconds())
}

// IncOverBudget increments the over-budget counter.
func (p *PrometheusRecorder) IncOverBudget(model string) {
	p.overBudgetTotal.WithLabelValues(model).Inc()
}
