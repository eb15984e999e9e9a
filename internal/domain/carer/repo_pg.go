package carer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carewatch/carewatch/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const carerCols = `id, agency_id, email, full_name, status, deactivation_reason, deactivated_at,
	created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, c *Carer) error {
	c.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO carers (id, agency_id, email, full_name, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		c.ID, c.AgencyID, c.Email, c.FullName, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return db.MapError(err, "carer")
}

func (r *repoPG) GetByID(ctx context.Context, agencyID, id uuid.UUID) (*Carer, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+carerCols+` FROM carers WHERE id = $1 AND agency_id = $2`, id, agencyID)
	c, err := scanCarer(row)
	if err != nil {
		return nil, db.MapError(err, "carer")
	}
	return c, nil
}

func (r *repoPG) List(ctx context.Context, agencyID uuid.UUID, status string, limit, offset int) ([]*Carer, int, error) {
	where := "agency_id = $1"
	args := []interface{}{agencyID}
	if status != "" {
		where += " AND status = $2"
		args = append(args, status)
	}

	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM carers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+carerCols+` FROM carers WHERE %s ORDER BY full_name LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Carer
	for rows.Next() {
		c, err := scanCarer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, c *Carer) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE carers SET status = $3, deactivation_reason = $4, deactivated_at = $5, updated_at = NOW()
		WHERE id = $1 AND agency_id = $2
		RETURNING updated_at`,
		c.ID, c.AgencyID, c.Status, c.DeactivationReason, c.DeactivatedAt,
	).Scan(&c.UpdatedAt)
	return db.MapError(err, "carer")
}

func (r *repoPG) ListClientIDs(ctx context.Context, carerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT client_id FROM carer_client_assignments WHERE carer_id = $1 ORDER BY assigned_at`, carerID)
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

func scanCarer(row pgx.Row) (*Carer, error) {
	var c Carer
	err := row.Scan(&c.ID, &c.AgencyID, &c.Email, &c.FullName, &c.Status, &c.DeactivationReason,
		&c.DeactivatedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
