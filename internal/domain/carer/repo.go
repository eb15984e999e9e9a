package carer

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Carer) error
	GetByID(ctx context.Context, agencyID, id uuid.UUID) (*Carer, error)
	List(ctx context.Context, agencyID uuid.UUID, status string, limit, offset int) ([]*Carer, int, error)
	UpdateStatus(ctx context.Context, c *Carer) error
	ListClientIDs(ctx context.Context, carerID uuid.UUID) ([]uuid.UUID, error)
}
