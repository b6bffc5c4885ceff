package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/psconsult/psconsult/internal/domain/audit"
	"github.com/psconsult/psconsult/internal/platform/apperr"
	"github.com/psconsult/psconsult/internal/platform/auth"
)

// AuditRecorder records audit trail entries. Satisfied by audit.Service.
type AuditRecorder interface {
	Record(ctx context.Context, actor *auth.Actor, action, entityType string, entityID, details *string)
}

type Service struct {
	repo    Repository
	issuer  *auth.TokenIssuer
	auditor AuditRecorder
}

func NewService(repo Repository, issuer *auth.TokenIssuer, auditor AuditRecorder) *Service {
	return &Service{repo: repo, issuer: issuer, auditor: auditor}
}

// Register creates a new account with a hashed password. New accounts are
// active immediately.
func (s *Service) Register(ctx context.Context, u *User, password string) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if len(password) < 6 {
		return apperr.Validation("password must be at least 6 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperr.Internal(err)
	}
	u.PasswordHash = hash
	u.IsActive = true
	return s.repo.Create(ctx, u)
}

// Login verifies credentials and returns a signed access token with the
// account. Inactive accounts cannot sign in.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil || !auth.VerifyPassword(password, u.PasswordHash) {
		// Same message for unknown user and bad password.
		return "", nil, apperr.Forbidden("invalid username or password")
	}
	if !u.IsActive {
		return "", nil, apperr.Forbidden("account is deactivated")
	}

	token, err := s.issuer.Issue(u.Actor())
	if err != nil {
		return "", nil, apperr.Internal(err)
	}
	s.auditor.Record(ctx, u.Actor(), audit.ActionLogin, "user", nil, nil)
	return token, u, nil
}

// Logout records the sign-out in the audit trail. Tokens are stateless so
// there is nothing to revoke server-side.
func (s *Service) Logout(ctx context.Context, actor *auth.Actor) {
	s.auditor.Record(ctx, actor, audit.ActionLogout, "user", nil, nil)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update applies admin changes to an account. Username is immutable; an
// empty password leaves the current one in place.
func (s *Service) Update(ctx context.Context, id uuid.UUID, update *User, newPassword string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Email != nil {
		u.Email = update.Email
	}
	if update.FullName != "" {
		u.FullName = update.FullName
	}
	if update.Role != "" {
		if !auth.ValidRole(update.Role) {
			return nil, apperr.Validation("invalid role: %s", update.Role)
		}
		u.Role = update.Role
	}
	if update.Designation != nil {
		if !validDesignation(*update.Designation) {
			return nil, apperr.Validation("invalid designation: %s", *update.Designation)
		}
		u.Designation = update.Designation
	}
	if update.Unit != nil {
		u.Unit = update.Unit
	}
	if update.Phone != nil {
		u.Phone = update.Phone
	}
	u.IsActive = update.IsActive
	if newPassword != "" {
		if len(newPassword) < 6 {
			return nil, apperr.Validation("password must be at least 6 characters")
		}
		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		u.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ActiveTeamMemberIDs lists active users holding clinical team roles.
// Used for new-consult notification fan-out.
func (s *Service) ActiveTeamMemberIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ActiveIDsByRoles(ctx, auth.TeamRoles)
}
