package carer

import (
	"context"
	"net/mail"
	"strings"
	"time"

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

// CreateCarer registers a carer as pending until they accept their invite.
func (s *Service) CreateCarer(ctx context.Context, c *Carer) error {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.FullName == "" {
		return apperr.Validation("full_name is required")
	}
	if c.Email == "" {
		return apperr.Validation("email is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return apperr.Validation("invalid email: %s", c.Email)
	}
	if c.AgencyID == uuid.Nil {
		return apperr.Validation("agency_id is required")
	}
	c.Status = StatusPending
	c.AssignedClientIDs = []uuid.UUID{}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		return s.record(ctx, activity.EventCarerCreated, c, "")
	})
}

// GetCarer returns the carer with the ids of their assigned clients.
func (s *Service) GetCarer(ctx context.Context, agencyID, id uuid.UUID) (*Carer, error) {
	c, err := s.repo.GetByID(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.repo.ListClientIDs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.AssignedClientIDs = ids
	return c, nil
}

func (s *Service) ListCarers(ctx context.Context, agencyID uuid.UUID, status string, limit, offset int) ([]*Carer, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, apperr.Validation("invalid status: %s", status)
	}
	return s.repo.List(ctx, agencyID, status, limit, offset)
}

func (s *Service) ListActiveCarers(ctx context.Context, agencyID uuid.UUID, limit, offset int) ([]*Carer, int, error) {
	return s.repo.List(ctx, agencyID, StatusActive, limit, offset)
}

func (s *Service) Deactivate(ctx context.Context, agencyID, id uuid.UUID, reason string) (*Carer, error) {
	if !validReasons[reason] {
		return nil, apperr.Validation("a valid deactivation reason is required")
	}
	return s.transition(ctx, agencyID, id, func(c *Carer) (string, error) {
		if c.Status == StatusInactive {
			return "", apperr.Conflict("carer is already inactive")
		}
		now := time.Now().UTC()
		c.Status = StatusInactive
		c.DeactivationReason = &reason
		c.DeactivatedAt = &now
		return activity.EventCarerDeactivated, nil
	})
}

// Reactivate returns an inactive or suspended carer to active and clears the
// deactivation details.
func (s *Service) Reactivate(ctx context.Context, agencyID, id uuid.UUID) (*Carer, error) {
	return s.transition(ctx, agencyID, id, func(c *Carer) (string, error) {
		if c.Status != StatusInactive && c.Status != StatusSuspended {
			return "", apperr.Conflict("carer is %s and cannot be reactivated", c.Status)
		}
		c.Status = StatusActive
		c.DeactivationReason = nil
		c.DeactivatedAt = nil
		return activity.EventCarerReactivated, nil
	})
}

func (s *Service) transition(ctx context.Context, agencyID, id uuid.UUID, apply func(c *Carer) (string, error)) (*Carer, error) {
	var c *Carer
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetByID(ctx, agencyID, id)
		if err != nil {
			return err
		}
		event, err := apply(c)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateStatus(ctx, c); err != nil {
			return err
		}
		reason := ""
		if c.DeactivationReason != nil {
			reason = *c.DeactivationReason
		}
		return s.record(ctx, event, c, reason)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) record(ctx context.Context, event string, c *Carer, reason string) error {
	agencyID := c.AgencyID
	return s.activity.Record(ctx, &activity.Entry{
		EventType:  event,
		AgencyID:   &agencyID,
		EntityID:   activity.Ptr(c.ID.String()),
		EntityName: activity.Ptr(c.FullName),
		Reason:     activity.Ptr(reason),
	})
}
