package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fenafar_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Convite lifecycle counter
	ConviteOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fenafar_convite_operations_total",
			Help: "Total number of invitation operations",
		},
		[]string{"operation"}, // "create", "validate", "accept", "reissue", "list"
	)

	// Sindicato operation counter
	SindicatoOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fenafar_sindicato_operations_total",
			Help: "Total number of sindicato operations",
		},
		[]string{"operation"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fenafar_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fenafar_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"}, // "missing_token", "invalid_token", "inactive", "forbidden" etc.
	)

	ConviteErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fenafar_convite_errors_total",
			Help: "Total number of invitation-state errors",
		},
		[]string{"type"}, // "not_found", "expired", "already_used", "email_registered", "duplicate_cnpj"
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fenafar_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fenafar_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fenafar_info",
			Help: "Information about the platform service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(ConviteOperationCounter)
	prometheus.MustRegister(SindicatoOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(ConviteErrorCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication or authorization error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordConviteOperation records an invitation operation
func RecordConviteOperation(operation string) {
	ConviteOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordConviteError records an invitation-state error by type
func RecordConviteError(errorType string) {
	ConviteErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordSindicatoOperation records a sindicato operation
func RecordSindicatoOperation(operation string) {
	SindicatoOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
