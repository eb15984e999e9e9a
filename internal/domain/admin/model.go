package admin

import (
	"time"

	"github.com/google/uuid"
)

// Platform admin roles. primary_admin may manage other admins; readonly_admin
// can only view.
const (
	RolePrimary  = "primary_admin"
	RoleAdmin    = "admin"
	RoleReadonly = "readonly_admin"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var validRoles = map[string]bool{
	RolePrimary:  true,
	RoleAdmin:    true,
	RoleReadonly: true,
}

// PlatformAdmin is a member of the platform operations team. Admins are not
// tied to an agency.
type PlatformAdmin struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	Email              string     `db:"email" json:"email"`
	FullName           string     `db:"full_name" json:"full_name"`
	AdminRole          string     `db:"admin_role" json:"admin_role"`
	Status             string     `db:"status" json:"status"`
	LastLoginAt        *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	DeactivatedAt      *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
	DeactivationReason *string    `db:"deactivation_reason" json:"deactivation_reason,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

type InviteRequest struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AdminRole string `json:"admin_role"`
}

type DeactivateRequest struct {
	Reason string `json:"reason"`
}
