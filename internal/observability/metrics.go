// Package observability collects Prometheus metrics for the sync engine and
// the view API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and the instruments the engine reports into.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	refreshesTotal    *prometheus.CounterVec
	refreshCoalesced  prometheus.Counter
	refreshDuration   prometheus.Histogram
	lookupFailures    prometheus.Counter
	notificationsSent prometheus.Counter
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewMetrics initializes the registry and all instruments.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitsync_refreshes_total",
		Help: "Completed refresh attempts by result (ok|error).",
	}, []string{"result"})
	coalesced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitsync_refresh_coalesced_total",
		Help: "Refresh requests that joined an already in-flight refresh.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "splitsync_refresh_duration_seconds",
		Help:    "Wall time of a full refresh (fetch, enrich, aggregate).",
		Buckets: prometheus.DefBuckets,
	})
	lookups := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitsync_identity_lookup_failures_total",
		Help: "Directory lookups that degraded to a placeholder name.",
	})
	notifications := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitsync_notifications_sent_total",
		Help: "Notifications handed to the notifier.",
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitsync_http_requests_total",
		Help: "View API requests by path and status code.",
	}, []string{"path", "code"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splitsync_http_request_duration_seconds",
		Help:    "View API request duration by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	registry.MustRegister(refreshes, coalesced, duration, lookups, notifications, requests, requestDuration)

	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		refreshesTotal:    refreshes,
		refreshCoalesced:  coalesced,
		refreshDuration:   duration,
		lookupFailures:    lookups,
		notificationsSent: notifications,
		requestsTotal:     requests,
		requestDuration:   requestDuration,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveRefresh records one completed refresh attempt.
func (m *Metrics) ObserveRefresh(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.refreshesTotal.WithLabelValues(result).Inc()
	m.refreshDuration.Observe(elapsed.Seconds())
}

// RefreshCoalesced records a refresh request that joined an in-flight one.
func (m *Metrics) RefreshCoalesced() {
	if m == nil {
		return
	}
	m.refreshCoalesced.Inc()
}

// LookupFailed records a directory lookup that fell back to a placeholder.
func (m *Metrics) LookupFailed() {
	if m == nil {
		return
	}
	m.lookupFailures.Inc()
}

// NotificationSent records a notification handed to the notifier.
func (m *Metrics) NotificationSent() {
	if m == nil {
		return
	}
	m.notificationsSent.Inc()
}

// Middleware records request metrics for the view API.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		m.requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
