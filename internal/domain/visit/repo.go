package visit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, agencyID, id uuid.UUID) (*Entry, error)
	ListByClient(ctx context.Context, agencyID, clientID uuid.UUID, limit, offset int) ([]*Entry, int, error)

	AddCorrection(ctx context.Context, n *CorrectionNote) error
	ListCorrections(ctx context.Context, entryID uuid.UUID) ([]*CorrectionNote, error)
}
