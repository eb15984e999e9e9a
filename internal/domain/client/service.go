package client

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/carewatch/carewatch/internal/domain/activity"
	"github.com/carewatch/carewatch/internal/platform/apperr"
)

const MaxDisplayNameLength = 200

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

func (s *Service) CreateClient(ctx context.Context, c *Client) error {
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	if c.DisplayName == "" {
		return apperr.Validation("display_name is required")
	}
	if utf8.RuneCountInString(c.DisplayName) > MaxDisplayNameLength {
		return apperr.Validation("display_name must be at most %d characters", MaxDisplayNameLength)
	}
	if c.AgencyID == uuid.Nil {
		return apperr.Validation("agency_id is required")
	}
	if c.InternalReference != nil && strings.TrimSpace(*c.InternalReference) == "" {
		c.InternalReference = nil
	}
	c.Status = StatusActive

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		return s.record(ctx, activity.EventClientCreated, c, "")
	})
}

func (s *Service) GetClient(ctx context.Context, agencyID, id uuid.UUID) (*Client, error) {
	return s.repo.GetByID(ctx, agencyID, id)
}

func (s *Service) ListClients(ctx context.Context, agencyID uuid.UUID, status string, limit, offset int) ([]*Client, int, error) {
	if status != "" && status != StatusActive && status != StatusInactive {
		return nil, 0, apperr.Validation("invalid status: %s", status)
	}
	return s.repo.List(ctx, agencyID, status, limit, offset)
}

// UpdateStatus deactivates a client with a reason or reactivates one.
// Reactivation clears the reason, note and date.
func (s *Service) UpdateStatus(ctx context.Context, agencyID, id uuid.UUID, u StatusUpdate) (*Client, error) {
	var event string
	switch u.Status {
	case StatusInactive:
		if !validReasons[u.Reason] {
			return nil, apperr.Validation("a valid deactivation reason is required")
		}
		event = activity.EventClientDeactivated
	case StatusActive:
		event = activity.EventClientReactivated
	default:
		return nil, apperr.Validation("invalid status: %s", u.Status)
	}

	var c *Client
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetByID(ctx, agencyID, id)
		if err != nil {
			return err
		}
		if c.Status == u.Status {
			return apperr.Conflict("client is already %s", u.Status)
		}

		c.Status = u.Status
		if u.Status == StatusInactive {
			now := time.Now().UTC()
			reason := u.Reason
			c.DeactivationReason = &reason
			c.DeactivationNote = nil
			if note := strings.TrimSpace(u.Note); note != "" {
				c.DeactivationNote = &note
			}
			c.DeactivatedAt = &now
		} else {
			c.DeactivationReason = nil
			c.DeactivationNote = nil
			c.DeactivatedAt = nil
		}
		if err := s.repo.UpdateStatus(ctx, c); err != nil {
			return err
		}
		return s.record(ctx, event, c, u.Reason)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// EnsureActive fails unless the client exists in the agency and is active.
func (s *Service) EnsureActive(ctx context.Context, agencyID, clientID uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, agencyID, clientID)
	if err != nil {
		return err
	}
	if c.Status != StatusActive {
		return apperr.Conflict("client is inactive")
	}
	return nil
}

// EnsureAssigned fails with Forbidden unless the carer is assigned to the
// client.
func (s *Service) EnsureAssigned(ctx context.Context, agencyID, clientID, carerID uuid.UUID) error {
	ids, err := s.repo.ListCarerIDs(ctx, agencyID, clientID)
	if err != nil {
		return err
	}
	if !slices.Contains(ids, carerID) {
		return apperr.Forbidden("carer is not assigned to this client")
	}
	return nil
}

func (s *Service) AssignCarer(ctx context.Context, agencyID, clientID, carerID uuid.UUID) error {
	if clientID == uuid.Nil || carerID == uuid.Nil {
		return apperr.Validation("client and carer are required")
	}
	return s.repo.Assign(ctx, agencyID, clientID, carerID)
}

func (s *Service) UnassignCarer(ctx context.Context, agencyID, clientID, carerID uuid.UUID) error {
	return s.repo.Unassign(ctx, agencyID, clientID, carerID)
}

func (s *Service) ListAssignedCarers(ctx context.Context, agencyID, clientID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.repo.GetByID(ctx, agencyID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListCarerIDs(ctx, agencyID, clientID)
}

// ClientsForCarer lists the active clients assigned to a carer.
func (s *Service) ClientsForCarer(ctx context.Context, agencyID, carerID uuid.UUID) ([]*Client, error) {
	return s.repo.ListActiveForCarer(ctx, agencyID, carerID)
}

func (s *Service) record(ctx context.Context, event string, c *Client, reason string) error {
	agencyID := c.AgencyID
	return s.activity.Record(ctx, &activity.Entry{
		EventType:  event,
		AgencyID:   &agencyID,
		EntityID:   activity.Ptr(c.ID.String()),
		EntityName: activity.Ptr(c.DisplayName),
		Reason:     activity.Ptr(reason),
	})
}
