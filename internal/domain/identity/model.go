package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/psconsult/psconsult/internal/platform/apperr"
	"github.com/psconsult/psconsult/internal/platform/auth"
)

// Designations held by clinical team members.
const (
	DesignationHO              = "HO"
	DesignationRegistrar       = "Registrar"
	DesignationSeniorRegistrar = "Senior Registrar"
)

// User is an account that can sign in to the service.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        *string   `db:"email" json:"email,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         string    `db:"role" json:"role"`
	Designation  *string   `db:"designation" json:"designation,omitempty"`
	Unit         *string   `db:"unit" json:"unit,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Actor returns the auth principal for this user.
func (u *User) Actor() *auth.Actor {
	return &auth.Actor{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

func validDesignation(d string) bool {
	switch d {
	case DesignationHO, DesignationRegistrar, DesignationSeniorRegistrar:
		return true
	}
	return false
}

// Validate checks the fields of a new account.
func (u *User) Validate() error {
	if u.Username == "" {
		return apperr.Validation("username is required")
	}
	if len(u.Username) < 3 {
		return apperr.Validation("username must be at least 3 characters")
	}
	if u.FullName == "" {
		return apperr.Validation("full_name is required")
	}
	if !auth.ValidRole(u.Role) {
		return apperr.Validation("invalid role: %s", u.Role)
	}
	if u.Designation != nil && !validDesignation(*u.Designation) {
		return apperr.Validation("invalid designation: %s", *u.Designation)
	}
	if u.Role == auth.RoleInvitingUnit && (u.Unit == nil || *u.Unit == "") {
		return apperr.Validation("unit is required for inviting_unit accounts")
	}
	return nil
}
