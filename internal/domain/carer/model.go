package carer

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusPending   = "pending"
	StatusSuspended = "suspended"
)

const (
	ReasonLeftOrganisation = "left_organisation"
	ReasonLongTermLeave    = "on_long_term_leave"
	ReasonInternalDecision = "internal_decision"
)

var validReasons = map[string]bool{
	ReasonLeftOrganisation: true,
	ReasonLongTermLeave:    true,
	ReasonInternalDecision: true,
}

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusInactive:  true,
	StatusPending:   true,
	StatusSuspended: true,
}

type Carer struct {
	ID                 uuid.UUID   `db:"id" json:"id"`
	AgencyID           uuid.UUID   `db:"agency_id" json:"agency_id"`
	Email              string      `db:"email" json:"email"`
	FullName           string      `db:"full_name" json:"full_name"`
	Status             string      `db:"status" json:"status"`
	DeactivationReason *string     `db:"deactivation_reason" json:"deactivation_reason,omitempty"`
	DeactivatedAt      *time.Time  `db:"deactivated_at" json:"deactivated_at,omitempty"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updated_at"`
	AssignedClientIDs  []uuid.UUID `json:"assigned_client_ids"`
}

type CreateRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type DeactivateRequest struct {
	Reason string `json:"reason"`
}
