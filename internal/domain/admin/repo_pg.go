package admin

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

const adminCols = `id, email, full_name, admin_role, status, last_login_at, deactivated_at,
	deactivation_reason, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *PlatformAdmin) error {
	a.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO platform_admins (id, email, full_name, admin_role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		a.ID, a.Email, a.FullName, a.AdminRole, a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return db.MapError(err, "admin")
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*PlatformAdmin, error) {
	a, err := scanAdmin(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+adminCols+` FROM platform_admins WHERE id = $1`, id))
	if err != nil {
		return nil, db.MapError(err, "admin")
	}
	return a, nil
}

func (r *repoPG) List(ctx context.Context, status string, limit, offset int) ([]*PlatformAdmin, int, error) {
	where := "TRUE"
	var args []interface{}
	if status != "" {
		where = "status = $1"
		args = append(args, status)
	}

	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM platform_admins WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+adminCols+` FROM platform_admins WHERE %s ORDER BY full_name LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*PlatformAdmin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, a *PlatformAdmin) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE platform_admins SET status = $2, deactivation_reason = $3, deactivated_at = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Status, a.DeactivationReason, a.DeactivatedAt,
	).Scan(&a.UpdatedAt)
	return db.MapError(err, "admin")
}

func (r *repoPG) TouchLogin(ctx context.Context, id uuid.UUID) (*PlatformAdmin, error) {
	a, err := scanAdmin(db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE platform_admins SET last_login_at = NOW()
		WHERE id = $1
		RETURNING `+adminCols, id))
	if err != nil {
		return nil, db.MapError(err, "admin")
	}
	return a, nil
}

func (r *repoPG) CountActive(ctx context.Context, role string) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM platform_admins WHERE status = 'active' AND admin_role = $1`, role).Scan(&n)
	return n, err
}

func scanAdmin(row pgx.Row) (*PlatformAdmin, error) {
	var a PlatformAdmin
	err := row.Scan(&a.ID, &a.Email, &a.FullName, &a.AdminRole, &a.Status, &a.LastLoginAt,
		&a.DeactivatedAt, &a.DeactivationReason, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
