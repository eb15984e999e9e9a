package client

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Reasons a client can be made inactive.
const (
	ReasonMovedProvider  = "moved_to_another_provider"
	ReasonDeceased       = "deceased"
	ReasonNoLongerServed = "no_longer_receiving_service"
	ReasonOther          = "other"
)

var validReasons = map[string]bool{
	ReasonMovedProvider:  true,
	ReasonDeceased:       true,
	ReasonNoLongerServed: true,
	ReasonOther:          true,
}

type Client struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	AgencyID           uuid.UUID  `db:"agency_id" json:"agency_id"`
	DisplayName        string     `db:"display_name" json:"display_name"`
	InternalReference  *string    `db:"internal_reference" json:"internal_reference,omitempty"`
	Status             string     `db:"status" json:"status"`
	DeactivationReason *string    `db:"deactivation_reason" json:"deactivation_reason,omitempty"`
	DeactivationNote   *string    `db:"deactivation_note" json:"deactivation_note,omitempty"`
	DeactivatedAt      *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	DisplayName       string `json:"display_name"`
	InternalReference string `json:"internal_reference"`
}

type StatusUpdate struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	Note   string `json:"note"`
}
