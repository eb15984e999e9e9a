package carer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carewatch/carewatch/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	return NewHandler(newTestService()), echo.New()
}

func managerRequest(method, body string, agencyID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req.WithContext(auth.WithIdentity(context.Background(), auth.Identity{
		UserID: "mgr", AgencyID: agencyID.String(), Roles: []string{auth.RoleManager},
	}))
}

func TestHandler_CreateCarer(t *testing.T) {
	h, e := newTestHandler()
	agency := uuid.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(managerRequest(http.MethodPost, `{"email":"kim@example.com","full_name":"Kim"}`, agency), rec)
	if err := h.CreateCarer(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Carer
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusPending || got.AgencyID != agency {
		t.Errorf("unexpected carer: %s", rec.Body.String())
	}
}

func TestHandler_CreateCarer_Invalid(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(managerRequest(http.MethodPost, `{"full_name":"No Email"}`, uuid.New()), httptest.NewRecorder())

	err := h.CreateCarer(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_DeactivateCarer(t *testing.T) {
	h, e := newTestHandler()
	agency := uuid.New()
	cr := createCarer(t, h.svc, agency, "x@example.com")

	rec := httptest.NewRecorder()
	c := e.NewContext(managerRequest(http.MethodPost, `{"reason":"on_long_term_leave"}`, agency), rec)
	c.SetParamNames("id")
	c.SetParamValues(cr.ID.String())
	if err := h.DeactivateCarer(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Carer
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusInactive {
		t.Errorf("expected inactive, got %s", got.Status)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(managerRequest(http.MethodPost, "", agency), rec)
	c.SetParamNames("id")
	c.SetParamValues(cr.ID.String())
	if err := h.ReactivateCarer(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusActive {
		t.Errorf("expected active, got %s", got.Status)
	}
}

func TestHandler_GetCarer_NotFound(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(managerRequest(http.MethodGet, "", uuid.New()), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetCarer(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_ListActiveCarers(t *testing.T) {
	h, e := newTestHandler()
	agency := uuid.New()
	cr := createCarer(t, h.svc, agency, "y@example.com")
	createCarer(t, h.svc, agency, "z@example.com")
	h.svc.Deactivate(context.Background(), agency, cr.ID, ReasonInternalDecision)
	h.svc.Reactivate(context.Background(), agency, cr.ID)

	rec := httptest.NewRecorder()
	c := e.NewContext(managerRequest(http.MethodGet, "", agency), rec)
	if err := h.ListActiveCarers(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Total != 1 {
		t.Errorf("expected 1 active carer, got %d", body.Total)
	}
}
