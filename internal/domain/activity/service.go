package activity

import (
	"context"
	"time"

	"github.com/carewatch/carewatch/internal/platform/apperr"
	"github.com/carewatch/carewatch/internal/platform/auth"
)

// Recorder is what other services need to write to the log.
type Recorder interface {
	Record(ctx context.Context, e *Entry) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends e. When PerformedBy is empty the caller's identity is taken
// from ctx.
func (s *Service) Record(ctx context.Context, e *Entry) error {
	if !ValidEventType(e.EventType) {
		return apperr.Validation("invalid event_type: %s", e.EventType)
	}
	if e.PerformedBy == "" {
		e.PerformedBy = auth.UserIDFromContext(ctx)
		e.PerformedByName = auth.UserNameFromContext(ctx)
	}
	if e.PerformedBy == "" {
		return apperr.Validation("performed_by is required")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	if f.EventType != "" && !ValidEventType(f.EventType) {
		return nil, 0, apperr.Validation("invalid event_type: %s", f.EventType)
	}
	return s.repo.List(ctx, f, limit, offset)
}

// Ptr is a small helper for the optional string fields of Entry.
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
