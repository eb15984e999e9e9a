package admin

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *PlatformAdmin) error
	GetByID(ctx context.Context, id uuid.UUID) (*PlatformAdmin, error)
	List(ctx context.Context, status string, limit, offset int) ([]*PlatformAdmin, int, error)
	UpdateStatus(ctx context.Context, a *PlatformAdmin) error
	TouchLogin(ctx context.Context, id uuid.UUID) (*PlatformAdmin, error)
	CountActive(ctx context.Context, role string) (int, error)
}
