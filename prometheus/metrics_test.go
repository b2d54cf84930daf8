package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/items/:name", func(c echo.Context) error { return c.NoContent(http.StatusNotFound) })

	before := testutil.ToFloat64(HTTPRequestCounter.WithLabelValues("/items/:name", http.MethodGet, "404"))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/widget", nil))
	after := testutil.ToFloat64(HTTPRequestCounter.WithLabelValues("/items/:name", http.MethodGet, "404"))

	if after-before != 1 {
		t.Fatalf("counter moved by %v", after-before)
	}
	if testutil.ToFloat64(StatusCategoryCounter.WithLabelValues("4xx")) < 1 {
		t.Fatalf("4xx category not recorded")
	}
}

func TestRecordPaymentTransition(t *testing.T) {
	RecordPaymentTransition("PAID", "PENDING", false)
	if got := testutil.ToFloat64(PaymentTransitionCounter.WithLabelValues("PAID", "PENDING", "rejected")); got != 1 {
		t.Fatalf("rejected transitions = %v", got)
	}
}

func TestTrackDBOperationObserves(t *testing.T) {
	TrackDBOperation("unit_test")(time.Now())
	if n := testutil.CollectAndCount(DBOperationDuration, "invoice_db_operation_duration_seconds"); n == 0 {
		t.Fatalf("no histogram series collected")
	}
}

func TestPrometheusHandlerExposesInfo(t *testing.T) {
	rec := httptest.NewRecorder()
	GetPrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "invoice_info") {
		t.Fatalf("metrics output missing invoice_info")
	}
}
