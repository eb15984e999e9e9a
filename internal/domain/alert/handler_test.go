package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carewatch/carewatch/internal/domain/risk"
	"github.com/carewatch/carewatch/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	return h, e
}

func scopedRequest(method, target, body string, agencyID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	ctx := auth.WithIdentity(context.Background(), auth.Identity{
		UserID:   "manager-1",
		AgencyID: agencyID.String(),
		Roles:    []string{auth.RoleManager},
	})
	return req.WithContext(ctx)
}

func TestHandler_ListAlerts(t *testing.T) {
	h, e := newTestHandler()
	agency := uuid.New()
	seedAlert(t, h.svc, agency, risk.Red)
	seedAlert(t, h.svc, agency, risk.Amber)

	rec := httptest.NewRecorder()
	c := e.NewContext(scopedRequest(http.MethodGet, "/api/v1/alerts?filter=red", "", agency), rec)

	if err := h.ListAlerts(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Total != 1 {
		t.Errorf("expected 1 red alert, got %d", body.Total)
	}
}

func TestHandler_ListAlerts_NoAgency(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.ListAlerts(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListAlerts_BadFilter(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(scopedRequest(http.MethodGet, "/api/v1/alerts?filter=purple", "", uuid.New()), httptest.NewRecorder())

	err := h.ListAlerts(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_UnreviewedCount(t *testing.T) {
	h, e := newTestHandler()
	agency := uuid.New()
	seedAlert(t, h.svc, agency, risk.Red)
	seedAlert(t, h.svc, agency, risk.Red)

	rec := httptest.NewRecorder()
	c := e.NewContext(scopedRequest(http.MethodGet, "/api/v1/alerts/count", "", agency), rec)
	if err := h.UnreviewedCount(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]int
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["unreviewed"] != 2 {
		t.Errorf("expected 2, got %v", body)
	}
}

func TestHandler_GetAlert_NotFound(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(scopedRequest(http.MethodGet, "/", "", uuid.New()), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetAlert(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_ReviewAlert(t *testing.T) {
	h, e := newTestHandler()
	agency := uuid.New()
	a := seedAlert(t, h.svc, agency, risk.Amber)

	rec := httptest.NewRecorder()
	c := e.NewContext(scopedRequest(http.MethodPost, "/", `{"action":"called_family","note":"Daughter visiting"}`, agency), rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())

	if err := h.ReviewAlert(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var got Alert
	json.Unmarshal(rec.Body.Bytes(), &got)
	if !got.IsReviewed || got.ReviewedBy == nil || *got.ReviewedBy != "manager-1" {
		t.Errorf("unexpected alert: %s", rec.Body.String())
	}

	c = e.NewContext(scopedRequest(http.MethodPost, "/", `{"action":"monitor"}`, agency), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	err := h.ReviewAlert(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409 on second review, got %v", err)
	}
}
