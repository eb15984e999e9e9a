package agency

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

const agencyCols = `a.id, a.name, a.status, a.contact_email, a.contact_name, a.notes,
	a.rejection_reason, a.created_at, a.updated_at`

const statsCols = `COALESCE(s.carer_count, 0), COALESCE(s.active_carer_count, 0),
	COALESCE(s.client_count, 0), COALESCE(s.active_client_count, 0),
	COALESCE(s.unreviewed_alert_count, 0), s.last_visit_at`

func (r *repoPG) Create(ctx context.Context, a *Agency) error {
	a.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO agencies (id, name, status, contact_email, contact_name, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		a.ID, a.Name, a.Status, a.ContactEmail, a.ContactName, a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return db.MapError(err, "agency")
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Agency, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+agencyCols+` FROM agencies a WHERE a.id = $1`, id)
	var a Agency
	if err := scanAgency(row, &a); err != nil {
		return nil, db.MapError(err, "agency")
	}
	return &a, nil
}

func (r *repoPG) List(ctx context.Context, status string, limit, offset int) ([]*WithStats, int, error) {
	where := "1=1"
	var args []interface{}
	if status != "" {
		where = "a.status = $1"
		args = append(args, status)
	}

	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM agencies a WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+agencyCols+`, `+statsCols+`
		FROM agencies a LEFT JOIN agency_stats s ON s.agency_id = a.id
		WHERE %s ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*WithStats
	for rows.Next() {
		item := &WithStats{Agency: &Agency{}}
		a, s := item.Agency, &item.Stats
		err := rows.Scan(&a.ID, &a.Name, &a.Status, &a.ContactEmail, &a.ContactName, &a.Notes,
			&a.RejectionReason, &a.CreatedAt, &a.UpdatedAt,
			&s.CarerCount, &s.ActiveCarerCount, &s.ClientCount, &s.ActiveClientCount,
			&s.UnreviewedAlertCount, &s.LastVisitAt)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *repoPG) GetStats(ctx context.Context, id uuid.UUID) (Stats, error) {
	var s Stats
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT carer_count, active_carer_count, client_count, active_client_count,
			unreviewed_alert_count, last_visit_at
		FROM agency_stats WHERE agency_id = $1`, id,
	).Scan(&s.CarerCount, &s.ActiveCarerCount, &s.ClientCount, &s.ActiveClientCount,
		&s.UnreviewedAlertCount, &s.LastVisitAt)
	if err != nil {
		return Stats{}, db.MapError(err, "agency")
	}
	return s, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, a *Agency) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE agencies SET status = $2, rejection_reason = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Status, a.RejectionReason,
	).Scan(&a.UpdatedAt)
	return db.MapError(err, "agency")
}

func scanAgency(row pgx.Row, a *Agency) error {
	return row.Scan(&a.ID, &a.Name, &a.Status, &a.ContactEmail, &a.ContactName, &a.Notes,
		&a.RejectionReason, &a.CreatedAt, &a.UpdatedAt)
}
