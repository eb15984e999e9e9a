package client

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

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	svc, repo, _ := newTestEnv()
	return NewHandler(svc), repo, echo.New()
}

func request(method, body string, id auth.Identity) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req.WithContext(auth.WithIdentity(context.Background(), id))
}

func manager(agencyID uuid.UUID) auth.Identity {
	return auth.Identity{UserID: "mgr-1", Name: "Mo", AgencyID: agencyID.String(), Roles: []string{auth.RoleManager}}
}

func TestHandler_CreateClient(t *testing.T) {
	h, _, e := newTestHandler()
	agency := uuid.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(request(http.MethodPost, `{"display_name":"Mrs Patel","internal_reference":"REF-9"}`, manager(agency)), rec)

	if err := h.CreateClient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var cl Client
	json.Unmarshal(rec.Body.Bytes(), &cl)
	if cl.AgencyID != agency || cl.InternalReference == nil || *cl.InternalReference != "REF-9" {
		t.Errorf("unexpected client: %s", rec.Body.String())
	}
}

func TestHandler_CreateClient_MissingName(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(request(http.MethodPost, `{}`, manager(uuid.New())), httptest.NewRecorder())

	err := h.CreateClient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_UpdateStatus(t *testing.T) {
	h, _, e := newTestHandler()
	agency := uuid.New()
	cl := createClient(t, h.svc, agency, "Eve")

	rec := httptest.NewRecorder()
	c := e.NewContext(request(http.MethodPatch, `{"status":"inactive","reason":"moved_to_another_provider"}`, manager(agency)), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Client
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusInactive {
		t.Errorf("expected inactive, got %s", got.Status)
	}
}

func TestHandler_GetClient_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(request(http.MethodGet, "", manager(uuid.New())), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetClient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_AssignAndList(t *testing.T) {
	h, repo, e := newTestHandler()
	agency, carer := uuid.New(), uuid.New()
	repo.carers[carer] = agency
	cl := createClient(t, h.svc, agency, "Fay")

	rec := httptest.NewRecorder()
	c := e.NewContext(request(http.MethodPost, `{"carer_id":"`+carer.String()+`"}`, manager(agency)), rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())
	if err := h.AssignCarer(c); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	// the carer can list their own clients
	rec = httptest.NewRecorder()
	carerID := auth.Identity{UserID: carer.String(), AgencyID: agency.String(), Roles: []string{auth.RoleCarer}}
	c = e.NewContext(request(http.MethodGet, "", carerID), rec)
	c.SetParamNames("id")
	c.SetParamValues(carer.String())
	if err := h.ListCarerClients(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []*Client
	json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got) != 1 || got[0].ID != cl.ID {
		t.Errorf("unexpected clients: %s", rec.Body.String())
	}

	// but not someone else's
	c = e.NewContext(request(http.MethodGet, "", carerID), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	err := h.ListCarerClients(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(request(http.MethodDelete, "", manager(agency)), rec)
	c.SetParamNames("id", "carerId")
	c.SetParamValues(cl.ID.String(), carer.String())
	if err := h.UnassignCarer(c); err != nil {
		t.Fatalf("unassign: %v", err)
	}
}

func TestHandler_ListClients(t *testing.T) {
	h, _, e := newTestHandler()
	agency := uuid.New()
	createClient(t, h.svc, agency, "G")
	createClient(t, h.svc, agency, "H")

	rec := httptest.NewRecorder()
	c := e.NewContext(request(http.MethodGet, "", manager(agency)), rec)
	if err := h.ListClients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Total != 2 {
		t.Errorf("expected 2, got %d", body.Total)
	}
}
