package agency

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/carewatch/carewatch/internal/domain/activity"
	"github.com/carewatch/carewatch/internal/platform/apperr"
)

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo     Repository
	activity activity.Recorder
	tx       Transactor
}

func NewService(repo Repository, recorder activity.Recorder, tx Transactor) *Service {
	return &Service{repo: repo, activity: recorder, tx: tx}
}

// Register records a new agency awaiting platform approval.
func (s *Service) Register(ctx context.Context, a *Agency) error {
	a.Name = strings.TrimSpace(a.Name)
	a.ContactName = strings.TrimSpace(a.ContactName)
	a.ContactEmail = strings.ToLower(strings.TrimSpace(a.ContactEmail))
	if a.Name == "" {
		return apperr.Validation("name is required")
	}
	if a.ContactName == "" {
		return apperr.Validation("contact_name is required")
	}
	if _, err := mail.ParseAddress(a.ContactEmail); err != nil {
		return apperr.Validation("a valid contact_email is required")
	}
	if a.Notes != nil && strings.TrimSpace(*a.Notes) == "" {
		a.Notes = nil
	}
	a.Status = StatusPending
	a.RejectionReason = nil

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		return s.record(ctx, activity.EventAgencyCreated, a, "")
	})
}

func (s *Service) GetAgency(ctx context.Context, id uuid.UUID) (*WithStats, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.GetStats(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WithStats{Agency: a, Stats: stats}, nil
}

func (s *Service) ListAgencies(ctx context.Context, status string, limit, offset int) ([]*WithStats, int, error) {
	if _, ok := transitions[status]; status != "" && !ok {
		return nil, 0, apperr.Validation("invalid status: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*Agency, error) {
	return s.changeStatus(ctx, id, StatusActive, "")
}

// Reject closes a pending application. A reason is required and kept on the
// agency.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*Agency, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("reason is required")
	}
	return s.changeStatus(ctx, id, StatusRejected, reason)
}

func (s *Service) Suspend(ctx context.Context, id uuid.UUID, reason string) (*Agency, error) {
	return s.changeStatus(ctx, id, StatusSuspended, strings.TrimSpace(reason))
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, reason string) (*Agency, error) {
	return s.changeStatus(ctx, id, StatusInactive, strings.TrimSpace(reason))
}

// Reactivate returns a suspended or inactive agency to active.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) (*Agency, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusPending {
		return nil, apperr.Conflict("pending agencies must be approved, not reactivated")
	}
	return s.changeStatus(ctx, id, StatusActive, "")
}

func (s *Service) changeStatus(ctx context.Context, id uuid.UUID, to, reason string) (*Agency, error) {
	var a *Agency
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(a.Status, to) {
			return apperr.Conflict("agency cannot move from %s to %s", a.Status, to)
		}
		a.Status = to
		if to == StatusRejected {
			a.RejectionReason = &reason
		}
		if err := s.repo.UpdateStatus(ctx, a); err != nil {
			return err
		}
		return s.record(ctx, activity.EventAgencyStatusChanged, a, statusReason(to, reason))
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) record(ctx context.Context, event string, a *Agency, reason string) error {
	id := a.ID
	return s.activity.Record(ctx, &activity.Entry{
		EventType:  event,
		AgencyID:   &id,
		AgencyName: activity.Ptr(a.Name),
		EntityID:   activity.Ptr(a.ID.String()),
		EntityName: activity.Ptr(a.Name),
		Reason:     activity.Ptr(reason),
	})
}

func statusReason(status, reason string) string {
	if reason == "" {
		return "Status changed to " + status
	}
	return "Status changed to " + status + ": " + reason
}
