package admin

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carewatch/carewatch/internal/domain/activity"
	"github.com/carewatch/carewatch/internal/platform/apperr"
	"github.com/carewatch/carewatch/internal/platform/auth"
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

// Bootstrap creates the first primary admin. It refuses once any active
// primary admin exists.
func (s *Service) Bootstrap(ctx context.Context, email, fullName string) (*PlatformAdmin, error) {
	a := &PlatformAdmin{Email: email, FullName: fullName, AdminRole: RolePrimary}
	if err := normalize(a); err != nil {
		return nil, err
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.repo.CountActive(ctx, RolePrimary)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("a primary admin already exists")
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		return s.activity.Record(ctx, &activity.Entry{
			EventType:       activity.EventAdminCreated,
			EntityID:        activity.Ptr(a.ID.String()),
			EntityName:      activity.Ptr(a.FullName),
			PerformedBy:     a.ID.String(),
			PerformedByName: a.FullName,
			Reason:          activity.Ptr("bootstrap"),
		})
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Invite adds a platform admin. Only an active primary admin may do so.
func (s *Service) Invite(ctx context.Context, a *PlatformAdmin) error {
	if err := normalize(a); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.requirePrimary(ctx); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		return s.record(ctx, activity.EventAdminCreated, a, "")
	})
}

func (s *Service) GetAdmin(ctx context.Context, id uuid.UUID) (*PlatformAdmin, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAdmins(ctx context.Context, status string, limit, offset int) ([]*PlatformAdmin, int, error) {
	if status != "" && status != StatusActive && status != StatusInactive {
		return nil, 0, apperr.Validation("invalid status: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

// Deactivate disables an admin. Admins cannot deactivate themselves, so at
// least one active primary admin always remains.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, reason string) (*PlatformAdmin, error) {
	reason = strings.TrimSpace(reason)
	var a *PlatformAdmin
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		caller, err := s.requirePrimary(ctx)
		if err != nil {
			return err
		}
		if caller.ID == id {
			return apperr.Conflict("admins cannot deactivate themselves")
		}
		a, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Status == StatusInactive {
			return apperr.Conflict("admin is already inactive")
		}
		now := time.Now().UTC()
		a.Status = StatusInactive
		a.DeactivatedAt = &now
		a.DeactivationReason = activity.Ptr(reason)
		if err := s.repo.UpdateStatus(ctx, a); err != nil {
			return err
		}
		return s.record(ctx, activity.EventAdminDeactivated, a, reason)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) (*PlatformAdmin, error) {
	var a *PlatformAdmin
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.requirePrimary(ctx); err != nil {
			return err
		}
		var err error
		a, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Status == StatusActive {
			return apperr.Conflict("admin is already active")
		}
		a.Status = StatusActive
		a.DeactivatedAt = nil
		a.DeactivationReason = nil
		if err := s.repo.UpdateStatus(ctx, a); err != nil {
			return err
		}
		return s.record(ctx, activity.EventAdminReactivated, a, "")
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// RecordLogin stamps the caller's last login and logs the sign-in.
func (s *Service) RecordLogin(ctx context.Context) (*PlatformAdmin, error) {
	id, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var a *PlatformAdmin
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != StatusActive {
			return apperr.Forbidden("admin account is inactive")
		}
		a, err = s.repo.TouchLogin(ctx, id)
		if err != nil {
			return err
		}
		return s.session(ctx, activity.EventAdminLogin, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) RecordLogout(ctx context.Context) error {
	id, err := callerID(ctx)
	if err != nil {
		return err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.session(ctx, activity.EventAdminLogout, a)
}

func (s *Service) requirePrimary(ctx context.Context) (*PlatformAdmin, error) {
	id, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Forbidden("caller is not a platform admin")
		}
		return nil, err
	}
	if caller.Status != StatusActive || caller.AdminRole != RolePrimary {
		return nil, apperr.Forbidden("only an active primary admin can manage admins")
	}
	return caller, nil
}

func callerID(ctx context.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, apperr.Forbidden("caller is not a platform admin")
	}
	return id, nil
}

func normalize(a *PlatformAdmin) error {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if a.FullName == "" {
		return apperr.Validation("full_name is required")
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return apperr.Validation("a valid email is required")
	}
	if a.AdminRole == "" {
		a.AdminRole = RoleAdmin
	}
	if !validRoles[a.AdminRole] {
		return apperr.Validation("invalid admin_role: %s", a.AdminRole)
	}
	a.Status = StatusActive
	return nil
}

func (s *Service) record(ctx context.Context, event string, a *PlatformAdmin, reason string) error {
	return s.activity.Record(ctx, &activity.Entry{
		EventType:  event,
		EntityID:   activity.Ptr(a.ID.String()),
		EntityName: activity.Ptr(a.FullName),
		Reason:     activity.Ptr(reason),
	})
}

func (s *Service) session(ctx context.Context, event string, a *PlatformAdmin) error {
	return s.activity.Record(ctx, &activity.Entry{
		EventType:       event,
		PerformedBy:     a.ID.String(),
		PerformedByName: a.FullName,
	})
}
