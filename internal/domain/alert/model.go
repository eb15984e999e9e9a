package alert

import (
	"time"

	"github.com/google/uuid"

	"github.com/carewatch/carewatch/internal/domain/risk"
)

// Actions a manager can record when reviewing an alert.
const (
	ActionMonitor             = "monitor"
	ActionCalledFamily        = "called_family"
	ActionInformedGP          = "informed_gp"
	ActionCommunityNurse      = "community_nurse"
	ActionEmergencyEscalation = "emergency_escalation"
)

var validActions = map[string]bool{
	ActionMonitor:             true,
	ActionCalledFamily:        true,
	ActionInformedGP:          true,
	ActionCommunityNurse:      true,
	ActionEmergencyEscalation: true,
}

func ValidAction(a string) bool {
	return validActions[a]
}

// Filter selects which alerts ListAlerts returns.
type Filter string

const (
	FilterUnreviewed Filter = "unreviewed"
	FilterReviewed   Filter = "reviewed"
	FilterAmber      Filter = "amber"
	FilterRed        Filter = "red"
	FilterAll        Filter = "all"
)

// ParseFilter accepts the query-string form of a Filter. The empty string
// means FilterAll.
func ParseFilter(s string) (Filter, bool) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, true
	case FilterUnreviewed, FilterReviewed, FilterAmber, FilterRed, FilterAll:
		return f, true
	}
	return "", false
}

type Alert struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	AgencyID     uuid.UUID  `db:"agency_id" json:"agency_id"`
	VisitEntryID uuid.UUID  `db:"visit_entry_id" json:"visit_entry_id"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	CarerID      uuid.UUID  `db:"carer_id" json:"carer_id"`
	RiskLevel    risk.Level `db:"risk_level" json:"risk_level"`
	IsReviewed   bool       `db:"is_reviewed" json:"is_reviewed"`
	ReviewedBy   *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ActionTaken  *string    `db:"action_taken" json:"action_taken,omitempty"`
	ManagerNote  *string    `db:"manager_note" json:"manager_note,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Review is a manager's decision on an alert.
type Review struct {
	Action string `json:"action"`
	Note   string `json:"note"`
}
