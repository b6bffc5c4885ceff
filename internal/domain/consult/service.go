package consult

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/psconsult/psconsult/internal/domain/audit"
	"github.com/psconsult/psconsult/internal/platform/apperr"
	"github.com/psconsult/psconsult/internal/platform/auth"
)

// Notifier fans a message out to a set of users. Satisfied by
// notification.Service.
type Notifier interface {
	Fanout(ctx context.Context, recipients []uuid.UUID, consultID *string, title, message string) int
}

// AuditRecorder records audit trail entries. Satisfied by audit.Service.
type AuditRecorder interface {
	Record(ctx context.Context, actor *auth.Actor, action, entityType string, entityID, details *string)
}

// TeamDirectory resolves active clinical team members for notification
// fan-out. Satisfied by identity.Service.
type TeamDirectory interface {
	ActiveTeamMemberIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TxRunner executes fn inside a database transaction carried on the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo     Repository
	notifier Notifier
	auditor  AuditRecorder
	team     TeamDirectory
	runTx    TxRunner
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, auditor AuditRecorder, team TeamDirectory, runTx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		auditor:  auditor,
		team:     team,
		runTx:    runTx,
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates and persists a new consult request, allocating its
// year-scoped identifier. When clientToken has been seen before, the
// previously created consult is returned with created=false and no new
// record, notification, or audit entry is produced. The actor is nil for
// public submissions.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, c *Consult, clientToken *string) (*Consult, bool, error) {
	if err := c.Validate(); err != nil {
		return nil, false, err
	}

	if clientToken != nil && *clientToken != "" {
		c.ClientToken = clientToken
		if existing, err := s.repo.GetByClientToken(ctx, *clientToken); err == nil {
			return existing, false, nil
		}
	}

	c.Status = StatusPending
	if actor != nil {
		c.CreatedBy = &actor.ID
	}

	err := s.runTx(ctx, func(txCtx context.Context) error {
		now := s.now()
		seq, err := s.repo.NextSequence(txCtx, now.Year())
		if err != nil {
			return err
		}
		c.ConsultID = FormatConsultID(now.Year(), seq)
		c.CreatedAt = now
		c.UpdatedAt = now
		return s.repo.Insert(txCtx, c)
	})
	if err == ErrDuplicateToken {
		// Lost the race against a concurrent retry carrying the same token.
		existing, ferr := s.repo.GetByClientToken(ctx, *clientToken)
		if ferr != nil {
			return nil, false, apperr.Internal(ferr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.fanoutNewConsult(ctx, c)
	s.auditor.Record(ctx, actor, audit.ActionCreated, "consult", &c.ConsultID, nil)
	return c, true, nil
}

func (s *Service) fanoutNewConsult(ctx context.Context, c *Consult) {
	recipients, err := s.team.ActiveTeamMemberIDs(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("consult_id", c.ConsultID).
			Msg("team lookup failed, skipping notification fan-out")
		return
	}
	delivered := s.notifier.Fanout(ctx, recipients, &c.ConsultID, "New Consult Request", c.NotificationMessage())
	s.logger.Info().Str("consult_id", c.ConsultID).
		Int("recipients", len(recipients)).
		Int("delivered", delivered).
		Msg("consult notifications sent")
	if delivered > 0 {
		c.NotificationSent = true
		if err := s.repo.Update(ctx, c); err != nil {
			s.logger.Warn().Err(err).Str("consult_id", c.ConsultID).
				Msg("failed to flag notification_sent")
		}
	}
}

// notifyCreator sends one notification to the consult's creator. Public
// submissions have no addressable owner, so nothing is sent.
func (s *Service) notifyCreator(ctx context.Context, c *Consult, title, message string) {
	if c.CreatedBy == nil {
		return
	}
	s.notifier.Fanout(ctx, []uuid.UUID{*c.CreatedBy}, &c.ConsultID, title, message)
}

// List returns consults visible to the actor. Inviting units are restricted
// to their own submissions at the query level.
func (s *Service) List(ctx context.Context, actor *auth.Actor, f Filter, limit, offset int) ([]*Consult, int, error) {
	if !CanViewAll(actor.Role) {
		f.CreatedBy = &actor.ID
	}
	return s.repo.List(ctx, f, limit, offset)
}

// Get returns one consult if the actor may see it.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*Consult, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, c) {
		return nil, apperr.Forbidden("consult belongs to another unit")
	}
	return c, nil
}

// SetStatus moves a consult to a new lifecycle status and applies the
// status's bookkeeping. Repeating a status overwrites its bookkeeping
// fields, so a consult re-accepted by someone else records the new acceptor.
// Optional notes are folded into the audit trail.
func (s *Service) SetStatus(ctx context.Context, actor *auth.Actor, id uuid.UUID, status string, notes *string) (*Consult, error) {
	if !CanSetStatus(actor.Role) {
		return nil, apperr.Forbidden("only the clinical team may change consult status")
	}
	if !ValidStatus(status) {
		return nil, apperr.Validation("unknown status: %s", status)
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := c.Status
	c.Status = status
	now := s.now()
	switch status {
	case StatusAccepted:
		c.AcceptedBy = &actor.ID
		c.AcceptedAt = &now
	case StatusReviewed:
		c.ReviewedAt = &now
	case StatusCompleted:
		c.CompletedAt = &now
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.notifyCreator(ctx, c, "Consult Status Updated", c.StatusChangeMessage(oldStatus))
	details := oldStatus + " -> " + status
	if notes != nil && *notes != "" {
		details += ": " + *notes
	}
	s.auditor.Record(ctx, actor, audit.ActionStatusChanged, "consult", &c.ConsultID, &details)
	return c, nil
}

// Acknowledge marks that a team member has seen the consult without moving
// its status.
func (s *Service) Acknowledge(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*Consult, error) {
	if !CanSetStatus(actor.Role) {
		return nil, apperr.Forbidden("only the clinical team may acknowledge consults")
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c.AcknowledgedBy = &actor.ID
	c.AcknowledgedAt = &now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	msg := "Consult " + c.ConsultID + " has been seen by " + actor.FullName
	s.notifyCreator(ctx, c, "Consult Acknowledged", msg)
	details := "acknowledged"
	s.auditor.Record(ctx, actor, audit.ActionModified, "consult", &c.ConsultID, &details)
	return c, nil
}

// SyncItem is one queued offline submission.
type SyncItem struct {
	Consult     Consult
	ClientToken string
}

// SyncResult is the acknowledgement for one synced submission, keyed back
// to the client's queue by its token.
type SyncResult struct {
	Acknowledgement
	ClientToken string `json:"client_token"`
	Error       string `json:"error,omitempty"`
}

// SyncOffline replays queued submissions in the order given. Each item is
// independent: a failed item is reported and the rest still apply. Items
// whose tokens were already seen come back as duplicate acknowledgements.
func (s *Service) SyncOffline(ctx context.Context, actor *auth.Actor, items []SyncItem) []SyncResult {
	results := make([]SyncResult, 0, len(items))
	for i := range items {
		item := &items[i]
		res := SyncResult{ClientToken: item.ClientToken}

		token := item.ClientToken
		created, wasNew, err := s.Create(ctx, actor, &item.Consult, &token)
		switch {
		case err != nil:
			res.Status = "error"
			res.Error = err.Error()
		default:
			res.Acknowledgement = NewAcknowledgement(created, wasNew)
		}
		results = append(results, res)
	}
	return results
}
