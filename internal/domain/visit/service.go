package visit

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/carewatch/carewatch/internal/domain/alert"
	"github.com/carewatch/carewatch/internal/domain/risk"
	"github.com/carewatch/carewatch/internal/domain/symptom"
	"github.com/carewatch/carewatch/internal/platform/apperr"
	"github.com/carewatch/carewatch/internal/platform/auth"
)

const (
	MaxNoteLength       = 5000
	MaxCorrectionLength = 2000
	MaxSymptoms         = 100
)

// Transactor runs fn in a single database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AlertService is the part of the alert service a visit needs.
type AlertService interface {
	Create(ctx context.Context, a *alert.Alert) error
	Announce(ctx context.Context, a *alert.Alert)
}

// ClientChecker confirms a client belongs to the agency and is active, and
// that a carer is assigned to them.
type ClientChecker interface {
	EnsureActive(ctx context.Context, agencyID, clientID uuid.UUID) error
	EnsureAssigned(ctx context.Context, agencyID, clientID, carerID uuid.UUID) error
}

type Metrics interface {
	ObserveScore(level string, score int)
}

type Service struct {
	repo    Repository
	catalog *symptom.Catalog
	engine  *risk.Engine
	alerts  AlertService
	tx      Transactor
	clients ClientChecker
	metrics Metrics
}

func NewService(repo Repository, catalog *symptom.Catalog, alerts AlertService, tx Transactor) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		engine:  risk.NewEngine(catalog),
		alerts:  alerts,
		tx:      tx,
	}
}

// SetClientChecker makes CreateVisitEntry refuse unknown or inactive clients.
// Without one, callers acting only as carers are refused outright.
func (s *Service) SetClientChecker(c ClientChecker) {
	s.clients = c
}

func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

func validateObservation(ids []string, v risk.Vitals) error {
	if len(ids) > MaxSymptoms {
		return apperr.Validation("at most %d symptoms may be selected", MaxSymptoms)
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return apperr.Validation("symptom ids must not be empty")
		}
	}
	if err := v.Validate(); err != nil {
		return apperr.Validation("%s", err.Error())
	}
	return nil
}

// CreateVisitEntry scores the observation and stores it. Amber and red entries
// get an alert in the same transaction; the alert is announced after commit.
func (s *Service) CreateVisitEntry(ctx context.Context, e *Entry) error {
	if e.AgencyID == uuid.Nil {
		return apperr.Validation("agency_id is required")
	}
	if e.ClientID == uuid.Nil {
		return apperr.Validation("client_id is required")
	}
	if e.CarerID == uuid.Nil {
		return apperr.Validation("carer_id is required")
	}
	if utf8.RuneCountInString(e.Note) > MaxNoteLength {
		return apperr.Validation("note must be at most %d characters", MaxNoteLength)
	}
	if err := validateObservation(e.SelectedSymptomIDs, e.Vitals); err != nil {
		return err
	}
	if s.clients != nil {
		if err := s.clients.EnsureActive(ctx, e.AgencyID, e.ClientID); err != nil {
			return err
		}
	}
	if err := s.ensureAssigned(ctx, e.AgencyID, e.ClientID); err != nil {
		return err
	}
	if e.SelectedSymptomIDs == nil {
		e.SelectedSymptomIDs = []string{}
	}

	res := s.engine.Score(e.SelectedSymptomIDs, e.Vitals)
	e.Score = res.Score
	e.RiskLevel = res.Level
	e.Reasons = res.Reasons
	e.CatalogVersion = s.catalog.Version

	var raised *alert.Alert
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, e); err != nil {
			return err
		}
		if !res.Level.RequiresAlert() {
			return nil
		}
		a := &alert.Alert{
			AgencyID:     e.AgencyID,
			VisitEntryID: e.ID,
			ClientID:     e.ClientID,
			CarerID:      e.CarerID,
			RiskLevel:    res.Level,
		}
		if err := s.alerts.Create(ctx, a); err != nil {
			return err
		}
		raised = a
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ObserveScore(string(res.Level), res.Score)
	}
	if raised != nil {
		e.AlertID = &raised.ID
		s.alerts.Announce(ctx, raised)
	}
	return nil
}

// GetVisitEntry returns the entry with its correction notes, oldest first.
func (s *Service) GetVisitEntry(ctx context.Context, agencyID, id uuid.UUID) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAssigned(ctx, agencyID, e.ClientID); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListCorrections(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	e.CorrectionNotes = notes
	return e, nil
}

// ListVisitEntriesByClient returns a client's entries, newest first.
func (s *Service) ListVisitEntriesByClient(ctx context.Context, agencyID, clientID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	if err := s.ensureAssigned(ctx, agencyID, clientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByClient(ctx, agencyID, clientID, limit, offset)
}

// AddCorrectionNote appends an amendment. Only the carer who recorded the
// visit may correct it.
func (s *Service) AddCorrectionNote(ctx context.Context, agencyID, entryID, carerID uuid.UUID, text string) (*CorrectionNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("text is required")
	}
	if utf8.RuneCountInString(text) > MaxCorrectionLength {
		return nil, apperr.Validation("text must be at most %d characters", MaxCorrectionLength)
	}
	e, err := s.repo.GetByID(ctx, agencyID, entryID)
	if err != nil {
		return nil, err
	}
	if e.CarerID != carerID {
		return nil, apperr.Forbidden("only the recording carer can correct this visit")
	}
	n := &CorrectionNote{VisitEntryID: e.ID, CarerID: carerID, Text: text}
	if err := s.repo.AddCorrection(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Preview scores an observation against the current catalog without storing
// anything.
func (s *Service) Preview(ids []string, v risk.Vitals) (risk.Result, error) {
	if err := validateObservation(ids, v); err != nil {
		return risk.Result{}, err
	}
	return s.engine.Score(ids, v), nil
}

// Rescore recomputes a stored entry with the current catalog. The stored
// result is left untouched.
func (s *Service) Rescore(ctx context.Context, agencyID, id uuid.UUID) (risk.Result, error) {
	e, err := s.repo.GetByID(ctx, agencyID, id)
	if err != nil {
		return risk.Result{}, err
	}
	return s.engine.Score(e.SelectedSymptomIDs, e.Vitals), nil
}

// carerScope returns the caller's carer id when they act only as a carer.
// Managers, readonly admins and admins are not limited to assigned clients.
func carerScope(ctx context.Context) (uuid.UUID, bool) {
	roles := auth.RolesFromContext(ctx)
	if auth.HasRole(roles, auth.RoleManager) || auth.HasRole(roles, auth.RoleReadonlyAdmin) {
		return uuid.Nil, false
	}
	return callerCarerID(ctx)
}

func (s *Service) ensureAssigned(ctx context.Context, agencyID, clientID uuid.UUID) error {
	carerID, ok := carerScope(ctx)
	if !ok {
		return nil
	}
	if s.clients == nil {
		return apperr.Forbidden("client assignments cannot be checked")
	}
	return s.clients.EnsureAssigned(ctx, agencyID, clientID, carerID)
}
