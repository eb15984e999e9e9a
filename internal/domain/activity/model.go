package activity

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventAgencyCreated       = "agency_created"
	EventAgencyStatusChanged = "agency_status_changed"
	EventCarerCreated        = "carer_created"
	EventCarerDeactivated    = "carer_deactivated"
	EventCarerReactivated    = "carer_reactivated"
	EventClientCreated       = "client_created"
	EventClientDeactivated   = "client_deactivated"
	EventClientReactivated   = "client_reactivated"
	EventAdminCreated        = "admin_created"
	EventAdminDeactivated    = "admin_deactivated"
	EventAdminReactivated    = "admin_reactivated"
	EventAdminLogin          = "admin_login"
	EventAdminLogout         = "admin_logout"
)

var validEventTypes = map[string]bool{
	EventAgencyCreated:       true,
	EventAgencyStatusChanged: true,
	EventCarerCreated:        true,
	EventCarerDeactivated:    true,
	EventCarerReactivated:    true,
	EventClientCreated:       true,
	EventClientDeactivated:   true,
	EventClientReactivated:   true,
	EventAdminCreated:        true,
	EventAdminDeactivated:    true,
	EventAdminReactivated:    true,
	EventAdminLogin:          true,
	EventAdminLogout:         true,
}

// ValidEventType reports whether t is a known event type.
func ValidEventType(t string) bool {
	return validEventTypes[t]
}

// Entry is one append-only audit record.
type Entry struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	EventType       string     `db:"event_type" json:"event_type"`
	AgencyID        *uuid.UUID `db:"agency_id" json:"agency_id,omitempty"`
	AgencyName      *string    `db:"agency_name" json:"agency_name,omitempty"`
	EntityID        *string    `db:"entity_id" json:"entity_id,omitempty"`
	EntityName      *string    `db:"entity_name" json:"entity_name,omitempty"`
	PerformedBy     string     `db:"performed_by" json:"performed_by"`
	PerformedByName string     `db:"performed_by_name" json:"performed_by_name"`
	Reason          *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"timestamp"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	AgencyID  *uuid.UUID
	EventType string
}
