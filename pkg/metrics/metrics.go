package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	GenerationsTotal   *prometheus.CounterVec
	QuotaDenials       *prometheus.CounterVec
	ProviderDuration   prometheus.Histogram
	ProviderErrors     prometheus.Counter
	UsersRegistered    prometheus.Counter
	LoginAttempts      *prometheus.CounterVec
	CheckoutsStarted   prometheus.Counter
	PremiumActivations prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		GenerationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dm_generations_total",
				Help: "Total number of DMs generated",
			},
			[]string{"tier", "tone"},
		),
		QuotaDenials: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quota_denials_total",
				Help: "Total number of generation requests denied by the quota gate",
			},
			[]string{"reason"}, // deny_needs_auth, deny_needs_upgrade
		),
		ProviderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Generation provider request latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		}),
		ProviderErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "provider_errors_total",
			Help: "Total number of failed generation provider calls",
		}),
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of users registered",
		}),
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),
		CheckoutsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "checkouts_started_total",
			Help: "Total number of Stripe checkout sessions created",
		}),
		PremiumActivations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "premium_activations_total",
			Help: "Total number of premium subscriptions activated",
		}),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, not the raw URL

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)

			return err
		}
	}
}

// RecordGeneration increments the generations counter
func (m *Metrics) RecordGeneration(tier, tone string) {
	m.GenerationsTotal.WithLabelValues(tier, tone).Inc()
}

// RecordQuotaDenial increments the quota denials counter
func (m *Metrics) RecordQuotaDenial(reason string) {
	m.QuotaDenials.WithLabelValues(reason).Inc()
}

// RecordProviderCall records provider latency, counting failures separately
func (m *Metrics) RecordProviderCall(duration time.Duration, err error) {
	m.ProviderDuration.Observe(duration.Seconds())
	if err != nil {
		m.ProviderErrors.Inc()
	}
}

// RecordUserRegistered increments the users registered counter
func (m *Metrics) RecordUserRegistered() {
	m.UsersRegistered.Inc()
}

// RecordLoginAttempt increments the login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// RecordCheckoutStarted increments the checkouts started counter
func (m *Metrics) RecordCheckoutStarted() {
	m.CheckoutsStarted.Inc()
}

// RecordPremiumActivation increments the premium activations counter
func (m *Metrics) RecordPremiumActivation() {
	m.PremiumActivations.Inc()
}
