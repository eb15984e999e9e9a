package visit

import (
	"context"

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

const entryCols = `id, agency_id, client_id, carer_id, selected_symptom_ids,
	temperature, pulse, systolic_bp, diastolic_bp, oxygen_saturation, respiratory_rate,
	note, score, risk_level, reasons, catalog_version, created_at`

const correctionCols = `id, visit_entry_id, carer_id, text, created_at`

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	v := e.Vitals
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO visit_entries (id, agency_id, client_id, carer_id, selected_symptom_ids,
			temperature, pulse, systolic_bp, diastolic_bp, oxygen_saturation, respiratory_rate,
			note, score, risk_level, reasons, catalog_version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING created_at`,
		e.ID, e.AgencyID, e.ClientID, e.CarerID, e.SelectedSymptomIDs,
		v.Temperature, v.Pulse, v.SystolicBP, v.DiastolicBP, v.OxygenSaturation, v.RespiratoryRate,
		e.Note, e.Score, e.RiskLevel, e.Reasons, e.CatalogVersion,
	).Scan(&e.CreatedAt)
	return db.MapError(err, "visit entry")
}

func (r *repoPG) GetByID(ctx context.Context, agencyID, id uuid.UUID) (*Entry, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+entryCols+` FROM visit_entries WHERE id = $1 AND agency_id = $2`, id, agencyID)
	e, err := scanEntry(row)
	if err != nil {
		return nil, db.MapError(err, "visit entry")
	}
	return e, nil
}

func (r *repoPG) ListByClient(ctx context.Context, agencyID, clientID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM visit_entries WHERE agency_id = $1 AND client_id = $2`,
		agencyID, clientID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+entryCols+` FROM visit_entries
		WHERE agency_id = $1 AND client_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		agencyID, clientID, limit, offset)
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

func (r *repoPG) AddCorrection(ctx context.Context, n *CorrectionNote) error {
	n.ID = uuid.New()
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO correction_notes (id, visit_entry_id, carer_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		n.ID, n.VisitEntryID, n.CarerID, n.Text,
	).Scan(&n.CreatedAt)
	return db.MapError(err, "correction note")
}

func (r *repoPG) ListCorrections(ctx context.Context, entryID uuid.UUID) ([]*CorrectionNote, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+correctionCols+` FROM correction_notes WHERE visit_entry_id = $1 ORDER BY created_at`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*CorrectionNote
	for rows.Next() {
		var n CorrectionNote
		if err := rows.Scan(&n.ID, &n.VisitEntryID, &n.CarerID, &n.Text, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	v := &e.Vitals
	err := row.Scan(&e.ID, &e.AgencyID, &e.ClientID, &e.CarerID, &e.SelectedSymptomIDs,
		&v.Temperature, &v.Pulse, &v.SystolicBP, &v.DiastolicBP, &v.OxygenSaturation, &v.RespiratoryRate,
		&e.Note, &e.Score, &e.RiskLevel, &e.Reasons, &e.CatalogVersion, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
