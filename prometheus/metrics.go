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
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_login_total",
			Help: "Total number of login attempts",
		},
		[]string{"method"}, // "password" or "google"
	)

	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoice_register_total",
			Help: "Total number of owner registrations",
		},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	QuotationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_quotation_operations_total",
			Help: "Total number of quotation operations",
		},
		[]string{"operation"}, // "create", "fetch", "render", "export"
	)

	PaymentTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_payment_transitions_total",
			Help: "Total number of payment status transitions",
		},
		[]string{"from", "to", "result"},
	)

	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invoice_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invoice_db_operation_duration_seconds",
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
			Name: "invoice_info",
			Help: "Information about the invoice service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(QuotationCounter)
	prometheus.MustRegister(PaymentTransitionCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(StatusCategoryCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures a database operation; use as
// defer TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(start).Seconds())
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordLogin records a login attempt by method
func RecordLogin(method string) {
	LoginCounter.With(prometheus.Labels{"method": method}).Inc()
}

// RecordQuotationOperation records a quotation operation
func RecordQuotationOperation(operation string) {
	QuotationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordPaymentTransition records an attempted status change and whether it was applied
func RecordPaymentTransition(from, to string, applied bool) {
	result := "applied"
	if !applied {
		result = "rejected"
	}
	PaymentTransitionCounter.With(prometheus.Labels{"from": from, "to": to, "result": result}).Inc()
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			labels := prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   strconv.Itoa(status),
			}
			RequestDuration.With(labels).Observe(time.Since(start).Seconds())
			HTTPRequestCounter.With(labels).Inc()
			if category := statusCategory(status); category != "" {
				StatusCategoryCounter.With(prometheus.Labels{"category": category}).Inc()
			}

			return err
		}
	}
}
