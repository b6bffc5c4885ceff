package dashboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/psconsult/psconsult/internal/domain/consult"
	"github.com/psconsult/psconsult/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// scopeFor narrows aggregates to the actor's own submissions when the actor
// cannot see every consult.
func scopeFor(actor *auth.Actor) *uuid.UUID {
	if consult.CanViewAll(actor.Role) {
		return nil
	}
	return &actor.ID
}

func (s *Service) Stats(ctx context.Context, actor *auth.Actor) (*Stats, error) {
	return s.repo.Stats(ctx, scopeFor(actor))
}

func (s *Service) ByWard(ctx context.Context, actor *auth.Actor) ([]Bucket, error) {
	return s.repo.CountByWard(ctx, scopeFor(actor))
}

func (s *Service) ByUrgency(ctx context.Context, actor *auth.Actor) ([]Bucket, error) {
	return s.repo.CountByUrgency(ctx, scopeFor(actor))
}
