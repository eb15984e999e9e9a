package agency

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusRejected  = "rejected"
)

// transitions lists the statuses reachable from each status.
var transitions = map[string][]string{
	StatusPending:   {StatusActive, StatusRejected},
	StatusActive:    {StatusSuspended, StatusInactive},
	StatusSuspended: {StatusActive, StatusInactive},
	StatusInactive:  {StatusActive},
	StatusRejected:  {},
}

// CanTransition reports whether an agency may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Agency struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Status          string    `db:"status" json:"status"`
	ContactEmail    string    `db:"contact_email" json:"contact_email"`
	ContactName     string    `db:"contact_name" json:"contact_name"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	RejectionReason *string   `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Stats are the headline numbers shown on the admin agency list.
type Stats struct {
	CarerCount           int        `db:"carer_count" json:"carer_count"`
	ActiveCarerCount     int        `db:"active_carer_count" json:"active_carer_count"`
	ClientCount          int        `db:"client_count" json:"client_count"`
	ActiveClientCount    int        `db:"active_client_count" json:"active_client_count"`
	UnreviewedAlertCount int        `db:"unreviewed_alert_count" json:"unreviewed_alert_count"`
	LastVisitAt          *time.Time `db:"last_visit_at" json:"last_visit_at,omitempty"`
}

type WithStats struct {
	*Agency
	Stats Stats `json:"stats"`
}

type RegisterRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	ContactName  string `json:"contact_name"`
	Notes        string `json:"notes"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}
