package visit

import (
	"time"

	"github.com/google/uuid"

	"github.com/carewatch/carewatch/internal/domain/risk"
)

// Entry is one scored visit observation. Score, RiskLevel and Reasons are
// computed at creation and never edited; later amendments are correction notes.
type Entry struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	AgencyID           uuid.UUID         `db:"agency_id" json:"agency_id"`
	ClientID           uuid.UUID         `db:"client_id" json:"client_id"`
	CarerID            uuid.UUID         `db:"carer_id" json:"carer_id"`
	SelectedSymptomIDs []string          `db:"selected_symptom_ids" json:"selected_symptom_ids"`
	Vitals             risk.Vitals       `json:"vitals"`
	Note               string            `db:"note" json:"note"`
	Score              int               `db:"score" json:"score"`
	RiskLevel          risk.Level        `db:"risk_level" json:"risk_level"`
	Reasons            []string          `db:"reasons" json:"reasons"`
	CatalogVersion     string            `db:"catalog_version" json:"catalog_version"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	CorrectionNotes    []*CorrectionNote `json:"correction_notes,omitempty"`
	AlertID            *uuid.UUID        `json:"alert_id,omitempty"`
}

type CorrectionNote struct {
	ID           uuid.UUID `db:"id" json:"id"`
	VisitEntryID uuid.UUID `db:"visit_entry_id" json:"visit_entry_id"`
	CarerID      uuid.UUID `db:"carer_id" json:"carer_id"`
	Text         string    `db:"text" json:"text"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateRequest is the body of POST /visits. CarerID may be omitted when the
// caller is the carer.
type CreateRequest struct {
	ClientID           uuid.UUID   `json:"client_id"`
	CarerID            uuid.UUID   `json:"carer_id"`
	SelectedSymptomIDs []string    `json:"selected_symptom_ids"`
	Vitals             risk.Vitals `json:"vitals"`
	Note               string      `json:"note"`
}

// PreviewRequest scores an observation without saving it.
type PreviewRequest struct {
	SelectedSymptomIDs []string    `json:"selected_symptom_ids"`
	Vitals             risk.Vitals `json:"vitals"`
}
