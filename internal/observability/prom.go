package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ServiceName = "recipehub"

type Prom struct {
	registry prometheus.Gatherer

	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec
	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Auth
	AuthRejections   *prometheus.CounterVec
	AuthzDecisions   *prometheus.CounterVec
	PasswordDuration *prometheus.HistogramVec
}

// NewProm registers the service collectors on a fresh registry, so tests can
// build as many routers as they like without duplicate registration panics.
func NewProm() *Prom {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	p := &Prom{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ServiceName,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ServiceName,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ServiceName,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ServiceName,
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ServiceName,
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		AuthRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ServiceName,
				Subsystem: "auth",
				Name:      "rejections_total",
				Help:      "Rejected credential artifacts by strategy and reason.",
			},
			[]string{"strategy", "reason"}, // reason=missing|malformed|invalid_signature|expired
		),
		AuthzDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ServiceName,
				Subsystem: "auth",
				Name:      "authorization_decisions_total",
				Help:      "Authorization outcomes by resource and decision.",
			},
			[]string{"resource", "decision"}, // decision=allow|deny|not_found
		),
		PasswordDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ServiceName,
				Subsystem: "auth",
				Name:      "password_duration_seconds",
				Help:      "Time spent hashing and verifying passwords.",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1.6},
			},
			[]string{"op"}, // op=hash|verify
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.AuthRejections, p.AuthzDecisions, p.PasswordDuration,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prom) IncAuthRejection(strategy, reason string) {
	p.AuthRejections.WithLabelValues(strategy, reason).Inc()
}

func (p *Prom) IncAuthzDecision(resource, decision string) {
	p.AuthzDecisions.WithLabelValues(resource, decision).Inc()
}

func (p *Prom) ObservePassword(op string, d time.Duration) {
	p.PasswordDuration.WithLabelValues(op).Observe(d.Seconds())
}
