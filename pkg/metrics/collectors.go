package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthcalc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "healthcalc_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthcalc_calculations_total",
			Help: "Calculations by calculator and outcome",
		},
		[]string{"calculator", "outcome"},
	)

	tipRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthcalc_tip_requests_total",
			Help: "Tip generations by source (llm, cache, fallback)",
		},
		[]string{"source"},
	)

	tipDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "healthcalc_tip_duration_seconds",
			Help:    "Latency of tip generation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)

	tipTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthcalc_tip_tokens_total",
			Help: "LLM tokens spent on tips",
		},
		[]string{"kind"},
	)
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(path, method string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(path, method).Observe(elapsed.Seconds())
}

// ObserveCalculation counts a calculation attempt. outcome is "ok" or "invalid".
func ObserveCalculation(calculator, outcome string) {
	calculationsTotal.WithLabelValues(calculator, outcome).Inc()
}

// ObserveTips records a tip generation and the tokens it used.
func ObserveTips(source string, elapsed time.Duration, usage *TokenUsage) {
	tipRequestsTotal.WithLabelValues(source).Inc()
	tipDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if usage == nil {
		return
	}
	tipTokensTotal.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
	tipTokensTotal.WithLabelValues("completion").Add(float64(usage.CompletionTokens))
}
