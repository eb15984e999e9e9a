package alert

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, agencyID, id uuid.UUID) (*Alert, error)
	List(ctx context.Context, agencyID uuid.UUID, f Filter, limit, offset int) ([]*Alert, int, error)
	// MarkReviewed updates a still-unreviewed alert. It reports false when the
	// alert was already reviewed.
	MarkReviewed(ctx context.Context, a *Alert) (bool, error)
	CountUnreviewed(ctx context.Context, agencyID uuid.UUID) (int, error)
}
