package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the audit trail.
const (
	ActionCreated       = "created"
	ActionModified      = "modified"
	ActionStatusChanged = "status_changed"
	ActionReviewed      = "reviewed"
	ActionDeleted       = "deleted"
	ActionLogin         = "login"
	ActionLogout        = "logout"
)

// Entry is a single audit trail record. UserID is nil for anonymous
// actions such as public consult submission.
type Entry struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UserID     *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Username   *string    `db:"username" json:"username,omitempty"`
	Action     string     `db:"action" json:"action"`
	EntityType string     `db:"entity_type" json:"entity_type"`
	EntityID   *string    `db:"entity_id" json:"entity_id,omitempty"`
	Details    *string    `db:"details" json:"details,omitempty"`
	IPAddress  *string    `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Filter narrows audit listing queries.
type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	UserID     *uuid.UUID
}
