// Package metrics exposes Prometheus collectors for the HTTP layer and the
// membership workflow.
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

const namespace = "nexo"

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	intentions    *prometheus.CounterVec
	registrations prometheus.Counter
	checkIns      prometheus.Counter
	payments      *prometheus.CounterVec
	emails        *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
}

// New registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),

		intentions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intentions",
			Name:      "total",
			Help:      "Intentions by outcome (submitted, approved, rejected).",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "members",
			Name:      "registrations_total",
			Help:      "Invite tokens redeemed into active members.",
		}),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "meetings",
			Name:      "check_ins_total",
			Help:      "Meeting check-ins, including repeats.",
		}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memberships",
			Name:      "payments_total",
			Help:      "Dues payments by method.",
		}, []string{"method"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "emails_logged_total",
			Help:      "Notification emails recorded by kind.",
		}, []string{"kind"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.intentions,
		m.registrations,
		m.checkIns,
		m.payments,
		m.emails,
		m.rateLimited,
	)

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count, latency and in-flight gauge. Routes are
// labeled by their chi pattern, not the raw path, to bound cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// IntentionSubmitted counts a new application.
func (m *Metrics) IntentionSubmitted() { m.intentions.WithLabelValues("submitted").Inc() }

// IntentionApproved counts an approval.
func (m *Metrics) IntentionApproved() { m.intentions.WithLabelValues("approved").Inc() }

// IntentionRejected counts a rejection.
func (m *Metrics) IntentionRejected() { m.intentions.WithLabelValues("rejected").Inc() }

// MemberRegistered counts a redeemed invite.
func (m *Metrics) MemberRegistered() { m.registrations.Inc() }

// CheckedIn counts a check-in.
func (m *Metrics) CheckedIn() { m.checkIns.Inc() }

// PaymentRecorded counts a dues payment.
func (m *Metrics) PaymentRecorded(method string) { m.payments.WithLabelValues(method).Inc() }

// EmailLogged counts a recorded notification.
func (m *Metrics) EmailLogged(kind string) { m.emails.WithLabelValues(kind).Inc() }

// RateLimited counts a throttled request.
func (m *Metrics) RateLimited(route string) { m.rateLimited.WithLabelValues(route).Inc() }
