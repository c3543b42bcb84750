// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Settlement outcomes used as the result label.
const (
	ResultOK            = "ok"
	ResultAlreadyLocked = "already_locked"
	ResultZeroMeals     = "zero_meals"
	ResultError         = "error"
)

var (
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealbook",
		Name:      "settlements_total",
		Help:      "Month settlement attempts by result.",
	}, []string{"result"})

	SettleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mealbook",
		Name:      "settle_duration_seconds",
		Help:      "Time spent inside the settlement transaction.",
		Buckets:   prometheus.DefBuckets,
	})

	LockRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealbook",
		Name:      "lock_rejections_total",
		Help:      "Mutations rejected because their month is locked.",
	}, []string{"kind"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealbook",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status class.",
	}, []string{"method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mealbook",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealbook",
		Name:      "events_published_total",
		Help:      "Settlement events published to the broker by result.",
	}, []string{"result"})

	ReportsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealbook",
		Name:      "reports_exported_total",
		Help:      "Month reports exported by the report worker by result.",
	}, []string{"result"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mealbook",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-IP rate limiter.",
	})

	ReportCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealbook",
		Name:      "report_cache_total",
		Help:      "Month summary lookups served from or missing the locked-report cache.",
	}, []string{"result"})

	SuspiciousRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mealbook",
		Name:      "suspicious_requests_total",
		Help:      "Requests matching a known probing pattern.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StatusClass collapses a status code to 2xx, 3xx, 4xx or 5xx.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
