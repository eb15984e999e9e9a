package activity

import (
	"context"
	"fmt"
	"strings"

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

const entryCols = `id, event_type, agency_id, agency_name, entity_id, entity_name,
	performed_by, performed_by_name, reason, created_at`

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO activity_log (id, event_type, agency_id, agency_name, entity_id, entity_name,
			performed_by, performed_by_name, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`,
		e.ID, e.EventType, e.AgencyID, e.AgencyName, e.EntityID, e.EntityName,
		e.PerformedBy, e.PerformedByName, e.Reason,
	).Scan(&e.CreatedAt)
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	where := []string{"1=1"}
	var args []interface{}
	idx := 1

	if f.AgencyID != nil {
		where = append(where, fmt.Sprintf("agency_id = $%d", idx))
		args = append(args, *f.AgencyID)
		idx++
	}
	if f.EventType != "" {
		where = append(where, fmt.Sprintf("event_type = $%d", idx))
		args = append(args, f.EventType)
		idx++
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM activity_log WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+entryCols+` FROM activity_log WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		clause, idx, idx+1)
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.EventType, &e.AgencyID, &e.AgencyName, &e.EntityID, &e.EntityName,
		&e.PerformedBy, &e.PerformedByName, &e.Reason, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
