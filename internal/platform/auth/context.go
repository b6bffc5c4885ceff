package auth

import (
	"context"

	"github.com/google/uuid"
)

// Roles understood by the service. Inviting units submit consults; the three
// team roles review them; admin manages everything.
const (
	RoleInvitingUnit    = "inviting_unit"
	RoleRegistrar       = "registrar"
	RoleSeniorRegistrar = "senior_registrar"
	RoleConsultant      = "consultant"
	RoleAdmin           = "admin"
)

// TeamRoles are the clinical plastic-surgery team roles that receive
// new-consult notifications and may acknowledge or review consults.
var TeamRoles = []string{RoleRegistrar, RoleSeniorRegistrar, RoleConsultant}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleInvitingUnit, RoleRegistrar, RoleSeniorRegistrar, RoleConsultant, RoleAdmin:
		return true
	}
	return false
}

// IsTeamRole reports whether role belongs to the clinical team.
func IsTeamRole(role string) bool {
	for _, r := range TeamRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the authenticated principal attached to a request.
type Actor struct {
	ID       uuid.UUID
	Username string
	FullName string
	Role     string
}

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext retrieves the authenticated actor, or nil for anonymous
// requests.
func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey).(*Actor)
	return a
}
