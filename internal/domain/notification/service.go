package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/psconsult/psconsult/internal/platform/apperr"
)

// Service fans notifications out to users and serves per-user inboxes.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Fanout delivers one notification per recipient. Delivery is best-effort:
// a failed insert is logged and skipped so one bad recipient never blocks
// the rest.
func (s *Service) Fanout(ctx context.Context, recipients []uuid.UUID, consultID *string, title, message string) int {
	delivered := 0
	for _, userID := range recipients {
		n := &Notification{
			UserID:    userID,
			ConsultID: consultID,
			Title:     title,
			Message:   message,
		}
		if err := s.repo.Insert(ctx, n); err != nil {
			s.logger.Warn().Err(err).
				Str("user_id", userID.String()).
				Msg("notification delivery failed")
			continue
		}
		delivered++
	}
	return delivered
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one notification as read. Users may only touch their own
// notifications.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return apperr.NotFound("notification not found")
	}
	if n.UserID != userID {
		return apperr.Forbidden("notification belongs to another user")
	}
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
