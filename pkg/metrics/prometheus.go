package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airquality",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "airquality",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path"})

	upstreamCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airquality",
		Subsystem: "upstream",
		Name:      "calls_total",
		Help:      "Calls to geocoding, air pollution and LLM providers by outcome",
	}, []string{"upstream", "outcome"})

	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airquality",
		Subsystem: "advisor",
		Name:      "assessments_total",
		Help:      "Ready assessments by AQI category",
	}, []string{"category"})

	llmTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airquality",
		Subsystem: "llm",
		Name:      "tokens_total",
		Help:      "LLM tokens spent on advice and chat, reported by the provider or estimated locally",
	}, []string{"kind", "source"})
)

// ObserveHTTP records one served request.
func ObserveHTTP(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// ObserveUpstream counts a collaborator call as ok or error.
func ObserveUpstream(upstream string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamCallsTotal.WithLabelValues(upstream, outcome).Inc()
}

// ObserveAssessment counts a ready report.
func ObserveAssessment(category string) {
	assessmentsTotal.WithLabelValues(category).Inc()
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
