package client

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, agencyID, id uuid.UUID) (*Client, error)
	// List returns the agency's clients; an empty status matches all.
	List(ctx context.Context, agencyID uuid.UUID, status string, limit, offset int) ([]*Client, int, error)
	UpdateStatus(ctx context.Context, c *Client) error

	Assign(ctx context.Context, agencyID, clientID, carerID uuid.UUID) error
	Unassign(ctx context.Context, agencyID, clientID, carerID uuid.UUID) error
	ListCarerIDs(ctx context.Context, agencyID, clientID uuid.UUID) ([]uuid.UUID, error)
	ListActiveForCarer(ctx context.Context, agencyID, carerID uuid.UUID) ([]*Client, error)
}
