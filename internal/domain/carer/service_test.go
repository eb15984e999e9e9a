package carer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carewatch/carewatch/internal/domain/activity"
	"github.com/carewatch/carewatch/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	carers  map[uuid.UUID]*Carer
	clients map[uuid.UUID][]uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		carers:  make(map[uuid.UUID]*Carer),
		clients: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockRepo) Create(_ context.Context, c *Carer) error {
	for _, existing := range m.carers {
		if existing.AgencyID == c.AgencyID && strings.EqualFold(existing.Email, c.Email) {
			return apperr.Conflict("carer already exists")
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.carers[c.ID] = c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, agencyID, id uuid.UUID) (*Carer, error) {
	c, ok := m.carers[id]
	if !ok || c.AgencyID != agencyID {
		return nil, apperr.NotFound("carer")
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, agencyID uuid.UUID, status string, limit, offset int) ([]*Carer, int, error) {
	var result []*Carer
	for _, c := range m.carers {
		if c.AgencyID == agencyID && (status == "" || c.Status == status) {
			result = append(result, c)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, c *Carer) error {
	cp := *c
	m.carers[c.ID] = &cp
	return nil
}

func (m *mockRepo) ListClientIDs(_ context.Context, carerID uuid.UUID) ([]uuid.UUID, error) {
	ids := m.clients[carerID]
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

type fakeRecorder struct {
	entries []*activity.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e *activity.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

type passTx struct{}

func (passTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestEnv() (*Service, *mockRepo, *fakeRecorder) {
	repo := newMockRepo()
	rec := &fakeRecorder{}
	return NewService(repo, rec, passTx{}), repo, rec
}

func newTestService() *Service {
	svc, _, _ := newTestEnv()
	return svc
}

func createCarer(t *testing.T, svc *Service, agencyID uuid.UUID, email string) *Carer {
	t.Helper()
	c := &Carer{AgencyID: agencyID, Email: email, FullName: "Carer " + email}
	if err := svc.CreateCarer(context.Background(), c); err != nil {
		t.Fatalf("create carer: %v", err)
	}
	return c
}

func TestCreateCarer(t *testing.T) {
	svc, _, rec := newTestEnv()
	c := &Carer{AgencyID: uuid.New(), Email: "  Sam@Example.COM ", FullName: "Sam Smith"}

	if err := svc.CreateCarer(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusPending {
		t.Errorf("expected pending, got %s", c.Status)
	}
	if c.Email != "sam@example.com" {
		t.Errorf("expected normalised email, got %s", c.Email)
	}
	if len(rec.entries) != 1 || rec.entries[0].EventType != activity.EventCarerCreated {
		t.Errorf("expected carer_created activity")
	}
}

func TestCreateCarer_Validation(t *testing.T) {
	svc := newTestService()
	tests := []struct {
		name  string
		carer *Carer
	}{
		{"no name", &Carer{AgencyID: uuid.New(), Email: "a@b.com"}},
		{"no email", &Carer{AgencyID: uuid.New(), FullName: "A"}},
		{"bad email", &Carer{AgencyID: uuid.New(), FullName: "A", Email: "not-an-email"}},
		{"no agency", &Carer{FullName: "A", Email: "a@b.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateCarer(context.Background(), tt.carer)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateCarer_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	agency := uuid.New()
	createCarer(t, svc, agency, "dup@example.com")

	err := svc.CreateCarer(context.Background(), &Carer{AgencyID: agency, Email: "DUP@example.com", FullName: "Again"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestGetCarer_IncludesAssignments(t *testing.T) {
	svc, repo, _ := newTestEnv()
	agency := uuid.New()
	c := createCarer(t, svc, agency, "g@example.com")
	client := uuid.New()
	repo.clients[c.ID] = []uuid.UUID{client}

	got, err := svc.GetCarer(context.Background(), agency, c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.AssignedClientIDs) != 1 || got.AssignedClientIDs[0] != client {
		t.Errorf("expected assigned client, got %v", got.AssignedClientIDs)
	}
}

func TestDeactivateAndReactivate(t *testing.T) {
	svc, repo, rec := newTestEnv()
	ctx := context.Background()
	agency := uuid.New()
	c := createCarer(t, svc, agency, "d@example.com")

	got, err := svc.Deactivate(ctx, agency, c.ID, ReasonLeftOrganisation)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got.Status != StatusInactive || got.DeactivatedAt == nil || *got.DeactivationReason != ReasonLeftOrganisation {
		t.Errorf("unexpected carer: %+v", got)
	}
	if repo.carers[c.ID].Status != StatusInactive {
		t.Error("expected status persisted")
	}

	if _, err := svc.Deactivate(ctx, agency, c.ID, ReasonLeftOrganisation); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict on second deactivation, got %v", err)
	}

	got, err = svc.Reactivate(ctx, agency, c.ID)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if got.Status != StatusActive || got.DeactivationReason != nil || got.DeactivatedAt != nil {
		t.Errorf("reactivation should clear deactivation details: %+v", got)
	}

	last := rec.entries[len(rec.entries)-1]
	if last.EventType != activity.EventCarerReactivated {
		t.Errorf("expected carer_reactivated, got %s", last.EventType)
	}
	if *rec.entries[1].Reason != ReasonLeftOrganisation {
		t.Error("expected deactivation reason in activity log")
	}
}

func TestDeactivate_Rules(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	agency := uuid.New()
	c := createCarer(t, svc, agency, "r@example.com")

	if _, err := svc.Deactivate(ctx, agency, c.ID, "fired"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for unknown reason, got %v", err)
	}
	if _, err := svc.Reactivate(ctx, agency, c.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("pending carers cannot be reactivated, got %v", err)
	}
	if _, err := svc.Deactivate(ctx, uuid.New(), c.ID, ReasonInternalDecision); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for other agency, got %v", err)
	}
}

func TestListCarers(t *testing.T) {
	svc, repo, _ := newTestEnv()
	ctx := context.Background()
	agency := uuid.New()
	a := createCarer(t, svc, agency, "a@example.com")
	createCarer(t, svc, agency, "b@example.com")
	repo.carers[a.ID].Status = StatusActive

	_, total, _ := svc.ListCarers(ctx, agency, "", 20, 0)
	if total != 2 {
		t.Errorf("expected 2, got %d", total)
	}
	_, total, _ = svc.ListActiveCarers(ctx, agency, 20, 0)
	if total != 1 {
		t.Errorf("expected 1 active, got %d", total)
	}
	if _, _, err := svc.ListCarers(ctx, agency, "retired", 20, 0); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
