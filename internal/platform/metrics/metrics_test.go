package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveScore(t *testing.T) {
	m := New()
	m.ObserveScore("red", 8)
	m.ObserveScore("red", 5)
	m.ObserveScore("green", 0)

	if got := testutil.ToFloat64(m.VisitsScored.WithLabelValues("red")); got != 2 {
		t.Errorf("expected 2 red visits, got %v", got)
	}
	if got := testutil.ToFloat64(m.VisitsScored.WithLabelValues("green")); got != 1 {
		t.Errorf("expected 1 green visit, got %v", got)
	}
	if n := testutil.CollectAndCount(m.RiskScore); n != 1 {
		t.Errorf("expected one histogram series, got %d", n)
	}
}

func TestAlertCounters(t *testing.T) {
	m := New()
	m.AlertCreated("amber")
	m.AlertReviewed("informed_gp")
	m.AlertReviewed("informed_gp")
	m.EventFailed("alert.created")

	if got := testutil.ToFloat64(m.AlertsCreated.WithLabelValues("amber")); got != 1 {
		t.Errorf("expected 1 amber alert, got %v", got)
	}
	if got := testutil.ToFloat64(m.AlertsReviewed.WithLabelValues("informed_gp")); got != 2 {
		t.Errorf("expected 2 reviews, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsFailed.WithLabelValues("alert.created")); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveScore("amber", 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `carewatch_visits_scored_total{risk_level="amber"} 1`) {
		t.Errorf("expected scored counter in output:\n%s", body)
	}
}

func TestMiddleware_RecordsRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/v1/visits/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "visit entry not found")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visits/123", nil))

	if n := testutil.CollectAndCount(m.HTTPRequests); n != 1 {
		t.Fatalf("expected 1 series, got %d", n)
	}
	expected := `carewatch_http_request_duration_seconds_count{method="GET",route="/api/v1/visits/:id",status="404"} 1`
	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), expected) {
		t.Errorf("expected %s in output", expected)
	}
}
