package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carewatch/carewatch/internal/platform/apperr"
	"github.com/carewatch/carewatch/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const clientCols = `id, agency_id, display_name, internal_reference, status,
	deactivation_reason, deactivation_note, deactivated_at, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, c *Client) error {
	c.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO clients (id, agency_id, display_name, internal_reference, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		c.ID, c.AgencyID, c.DisplayName, c.InternalReference, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return db.MapError(err, "client")
}

func (r *repoPG) GetByID(ctx context.Context, agencyID, id uuid.UUID) (*Client, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+clientCols+` FROM clients WHERE id = $1 AND agency_id = $2`, id, agencyID)
	c, err := scanClient(row)
	if err != nil {
		return nil, db.MapError(err, "client")
	}
	return c, nil
}

func (r *repoPG) List(ctx context.Context, agencyID uuid.UUID, status string, limit, offset int) ([]*Client, int, error) {
	where := "agency_id = $1"
	args := []interface{}{agencyID}
	if status != "" {
		where += " AND status = $2"
		args = append(args, status)
	}

	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+clientCols+` FROM clients WHERE %s ORDER BY display_name LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectClients(rows)
	return items, total, err
}

func (r *repoPG) UpdateStatus(ctx context.Context, c *Client) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE clients SET status = $3, deactivation_reason = $4, deactivation_note = $5,
			deactivated_at = $6, updated_at = NOW()
		WHERE id = $1 AND agency_id = $2
		RETURNING updated_at`,
		c.ID, c.AgencyID, c.Status, c.DeactivationReason, c.DeactivationNote, c.DeactivatedAt,
	).Scan(&c.UpdatedAt)
	return db.MapError(err, "client")
}

func (r *repoPG) Assign(ctx context.Context, agencyID, clientID, carerID uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO carer_client_assignments (carer_id, client_id)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM carers WHERE id = $1 AND agency_id = $3)
		  AND EXISTS (SELECT 1 FROM clients WHERE id = $2 AND agency_id = $3)`,
		carerID, clientID, agencyID)
	if err != nil {
		return db.MapError(err, "assignment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("carer or client")
	}
	return nil
}

func (r *repoPG) Unassign(ctx context.Context, agencyID, clientID, carerID uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		DELETE FROM carer_client_assignments a
		USING clients c
		WHERE a.client_id = c.id AND c.agency_id = $3 AND a.carer_id = $1 AND a.client_id = $2`,
		carerID, clientID, agencyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("assignment")
	}
	return nil
}

func (r *repoPG) ListCarerIDs(ctx context.Context, agencyID, clientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT a.carer_id FROM carer_client_assignments a
		JOIN clients c ON c.id = a.client_id
		WHERE a.client_id = $1 AND c.agency_id = $2
		ORDER BY a.assigned_at`, clientID, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repoPG) ListActiveForCarer(ctx context.Context, agencyID, carerID uuid.UUID) ([]*Client, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+qualified("c", clientCols)+` FROM clients c
		JOIN carer_client_assignments a ON a.client_id = c.id
		WHERE a.carer_id = $1 AND c.agency_id = $2 AND c.status = 'active'
		ORDER BY c.display_name`, carerID, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectClients(rows)
}

func collectClients(rows pgx.Rows) ([]*Client, error) {
	var items []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.AgencyID, &c.DisplayName, &c.InternalReference, &c.Status,
		&c.DeactivationReason, &c.DeactivationNote, &c.DeactivatedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// qualified prefixes every column in cols with alias.
func qualified(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
