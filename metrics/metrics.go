// Package metrics holds the Prometheus collectors of the service: HTTP
// traffic, payment intent outcomes and webhook events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests that didn't match any route, so unknown
// paths don't create new series.
const unmatchedRoute = "unmatched"

// Outcome values of the payment_intents_total counter.
const (
	OutcomeCreated  = "created"
	OutcomeRejected = "rejected"
)

// Metrics groups the collectors of the service, registered on their own
// registry.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	paymentIntents *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a new registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		paymentIntents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_intents_total",
			Help: "Payment intent creation attempts, by outcome.",
		}, []string{"outcome"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Verified webhook events received, by type, whether they were handled and whether they were redelivered.",
		}, []string{"type", "handled", "redelivery"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.paymentIntents,
		m.webhookEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records the count and the latency of every request, labelled
// by the chi route pattern matched.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// PaymentIntent counts a payment intent creation attempt. outcome is
// OutcomeCreated, OutcomeRejected or the provider error category.
func (m *Metrics) PaymentIntent(outcome string) {
	m.paymentIntents.WithLabelValues(outcome).Inc()
}

// WebhookEvent counts a verified webhook event.
func (m *Metrics) WebhookEvent(eventType string, handled, redelivery bool) {
	m.webhookEvents.WithLabelValues(eventType, strconv.FormatBool(handled), strconv.FormatBool(redelivery)).Inc()
}
