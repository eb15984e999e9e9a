package alert

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

const alertCols = `id, agency_id, visit_entry_id, client_id, carer_id, risk_level, is_reviewed,
	reviewed_by, reviewed_at, action_taken, manager_note, created_at`

var filterClauses = map[Filter]string{
	FilterUnreviewed: " AND NOT is_reviewed",
	FilterReviewed:   " AND is_reviewed",
	FilterAmber:      " AND risk_level = 'amber'",
	FilterRed:        " AND risk_level = 'red'",
	FilterAll:        "",
}

func (r *repoPG) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO alerts (id, agency_id, visit_entry_id, client_id, carer_id, risk_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		a.ID, a.AgencyID, a.VisitEntryID, a.ClientID, a.CarerID, a.RiskLevel,
	).Scan(&a.CreatedAt)
	return db.MapError(err, "alert")
}

func (r *repoPG) GetByID(ctx context.Context, agencyID, id uuid.UUID) (*Alert, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+alertCols+` FROM alerts WHERE id = $1 AND agency_id = $2`, id, agencyID)
	a, err := scanAlert(row)
	if err != nil {
		return nil, db.MapError(err, "alert")
	}
	return a, nil
}

func (r *repoPG) List(ctx context.Context, agencyID uuid.UUID, f Filter, limit, offset int) ([]*Alert, int, error) {
	clause, ok := filterClauses[f]
	if !ok {
		return nil, 0, fmt.Errorf("unknown alert filter %q", f)
	}

	var total int
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM alerts WHERE agency_id = $1`+clause, agencyID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+alertCols+` FROM alerts WHERE agency_id = $1`+clause+
			` ORDER BY created_at DESC LIMIT $2 OFFSET $3`, agencyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) MarkReviewed(ctx context.Context, a *Alert) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE alerts SET is_reviewed = TRUE, reviewed_by = $3, reviewed_at = $4,
			action_taken = $5, manager_note = $6
		WHERE id = $1 AND agency_id = $2 AND NOT is_reviewed`,
		a.ID, a.AgencyID, a.ReviewedBy, a.ReviewedAt, a.ActionTaken, a.ManagerNote)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) CountUnreviewed(ctx context.Context, agencyID uuid.UUID) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM alerts WHERE agency_id = $1 AND NOT is_reviewed`, agencyID).Scan(&n)
	return n, err
}

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.AgencyID, &a.VisitEntryID, &a.ClientID, &a.CarerID, &a.RiskLevel,
		&a.IsReviewed, &a.ReviewedBy, &a.ReviewedAt, &a.ActionTaken, &a.ManagerNote, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
