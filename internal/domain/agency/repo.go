package agency

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Agency) error
	GetByID(ctx context.Context, id uuid.UUID) (*Agency, error)
	// List returns agencies with their stats, newest first. An empty status
	// matches all.
	List(ctx context.Context, status string, limit, offset int) ([]*WithStats, int, error)
	GetStats(ctx context.Context, id uuid.UUID) (Stats, error)
	UpdateStatus(ctx context.Context, a *Agency) error
}
