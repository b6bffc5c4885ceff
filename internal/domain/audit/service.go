package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/psconsult/psconsult/internal/platform/auth"
	"github.com/psconsult/psconsult/internal/platform/middleware"
)

// Service records and lists audit entries. Recording is best-effort: a
// failed write is retried once, then logged and swallowed so that audit
// trouble never fails the operation being audited.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record writes an audit entry for the given action. The actor may be nil
// for anonymous actions.
func (s *Service) Record(ctx context.Context, actor *auth.Actor, action, entityType string, entityID, details *string) {
	e := &Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  middleware.ClientIPFromContext(ctx),
	}
	if actor != nil {
		e.UserID = &actor.ID
		e.Username = &actor.Username
	}

	err := s.repo.Insert(ctx, e)
	if err != nil {
		// One retry covers transient connection loss.
		e.ID = uuid.Nil
		err = s.repo.Insert(ctx, e)
	}
	if err != nil {
		s.logger.Warn().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Msg("audit entry dropped")
	}
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
