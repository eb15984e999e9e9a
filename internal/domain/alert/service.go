package alert

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carewatch/carewatch/internal/platform/apperr"
	"github.com/carewatch/carewatch/internal/platform/events"
)

// MaxNoteLength bounds the manager note on a review.
const MaxNoteLength = 2000

// Metrics is the subset of the Prometheus instruments the alert service feeds.
type Metrics interface {
	AlertCreated(level string)
	AlertReviewed(action string)
	EventFailed(eventType string)
}

// DefaultPublishTimeout bounds how long a request waits on the broker.
const DefaultPublishTimeout = 2 * time.Second

type Service struct {
	repo           Repository
	publisher      events.Publisher
	metrics        Metrics
	publishTimeout time.Duration
}

func NewService(repo Repository, publisher events.Publisher, metrics Metrics) *Service {
	return &Service{repo: repo, publisher: publisher, metrics: metrics, publishTimeout: DefaultPublishTimeout}
}

func (s *Service) SetPublishTimeout(d time.Duration) {
	if d > 0 {
		s.publishTimeout = d
	}
}

// Create persists an alert for a scored visit. It is called inside the visit
// transaction and publishes nothing; call Announce after commit.
func (s *Service) Create(ctx context.Context, a *Alert) error {
	if !a.RiskLevel.RequiresAlert() {
		return apperr.Validation("alerts are only raised for amber or red visits, got %q", a.RiskLevel)
	}
	if a.VisitEntryID == uuid.Nil || a.ClientID == uuid.Nil || a.CarerID == uuid.Nil || a.AgencyID == uuid.Nil {
		return apperr.Validation("alert requires visit entry, client, carer and agency")
	}
	return s.repo.Create(ctx, a)
}

// Announce publishes alert.created and counts the alert. Publishing failures
// are logged and counted but never undo the committed alert.
func (s *Service) Announce(ctx context.Context, a *Alert) {
	if s.metrics != nil {
		s.metrics.AlertCreated(string(a.RiskLevel))
	}
	s.publish(ctx, events.TypeAlertCreated, a)
}

func (s *Service) GetAlert(ctx context.Context, agencyID, id uuid.UUID) (*Alert, error) {
	return s.repo.GetByID(ctx, agencyID, id)
}

func (s *Service) ListAlerts(ctx context.Context, agencyID uuid.UUID, filter string, limit, offset int) ([]*Alert, int, error) {
	f, ok := ParseFilter(filter)
	if !ok {
		return nil, 0, apperr.Validation("invalid filter: %s", filter)
	}
	return s.repo.List(ctx, agencyID, f, limit, offset)
}

func (s *Service) UnreviewedCount(ctx context.Context, agencyID uuid.UUID) (int, error) {
	return s.repo.CountUnreviewed(ctx, agencyID)
}

// ReviewAlert records a manager's action. An alert can be reviewed once.
func (s *Service) ReviewAlert(ctx context.Context, agencyID, id uuid.UUID, managerID string, r Review) (*Alert, error) {
	if !ValidAction(r.Action) {
		return nil, apperr.Validation("invalid action: %s", r.Action)
	}
	if managerID == "" {
		return nil, apperr.Validation("reviewer is required")
	}
	if utf8.RuneCountInString(r.Note) > MaxNoteLength {
		return nil, apperr.Validation("note must be at most %d characters", MaxNoteLength)
	}

	a, err := s.repo.GetByID(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	if a.IsReviewed {
		return nil, apperr.Conflict("alert %s has already been reviewed", id)
	}

	now := time.Now().UTC()
	action := r.Action
	a.IsReviewed = true
	a.ReviewedBy = &managerID
	a.ReviewedAt = &now
	a.ActionTaken = &action
	a.ManagerNote = nil
	if r.Note != "" {
		note := r.Note
		a.ManagerNote = &note
	}

	ok, err := s.repo.MarkReviewed(ctx, a)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("alert %s has already been reviewed", id)
	}

	if s.metrics != nil {
		s.metrics.AlertReviewed(action)
	}
	s.publish(ctx, events.TypeAlertReviewed, a)
	return a, nil
}

func (s *Service) publish(ctx context.Context, eventType string, a *Alert) {
	if s.publisher == nil {
		return
	}
	// Publishing outlives a cancelled request but not the publish timeout.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	evt, err := events.New(eventType, a.AgencyID, a.ClientID.String(), a)
	if err == nil {
		err = s.publisher.Publish(pubCtx, evt)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.EventFailed(eventType)
		}
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("event_type", eventType).
			Str("alert_id", a.ID.String()).
			Msg("publish alert event")
	}
}
