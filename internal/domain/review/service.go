package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/psconsult/psconsult/internal/domain/audit"
	"github.com/psconsult/psconsult/internal/domain/consult"
	"github.com/psconsult/psconsult/internal/platform/auth"
)

// ConsultLifecycle is the slice of the consult service a review needs:
// moving the reviewed consult to its post-review status. Satisfied by
// consult.Service.
type ConsultLifecycle interface {
	SetStatus(ctx context.Context, actor *auth.Actor, id uuid.UUID, status string, notes *string) (*consult.Consult, error)
}

// AuditRecorder records audit trail entries. Satisfied by audit.Service.
type AuditRecorder interface {
	Record(ctx context.Context, actor *auth.Actor, action, entityType string, entityID, details *string)
}

// TxRunner executes fn inside a database transaction carried on the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo     Repository
	consults ConsultLifecycle
	auditor  AuditRecorder
	runTx    TxRunner
}

func NewService(repo Repository, consults ConsultLifecycle, auditor AuditRecorder, runTx TxRunner) *Service {
	return &Service{repo: repo, consults: consults, auditor: auditor, runTx: runTx}
}

// Create records a review and forces the consult into reviewed or, when a
// procedure was planned, procedure_planned. The status move and the review
// insert commit together: a failed insert rolls the status force back.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, rv *Review) (*Review, error) {
	if err := rv.Validate(); err != nil {
		return nil, err
	}
	rv.ReviewerID = actor.ID
	rv.ReviewerName = actor.FullName

	target := consult.StatusReviewed
	if rv.ProcedurePlanned {
		target = consult.StatusProcedurePlanned
	}

	var reviewed *consult.Consult
	err := s.runTx(ctx, func(txCtx context.Context) error {
		// SetStatus also enforces that only team members review.
		c, err := s.consults.SetStatus(txCtx, actor, rv.ConsultRef, target, nil)
		if err != nil {
			return err
		}
		reviewed = c
		return s.repo.Insert(txCtx, rv)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actor, audit.ActionReviewed, "consult", &reviewed.ConsultID, &rv.Findings)
	return rv, nil
}

// Update amends an existing review's clinical content. The consult
// reference and reviewer attribution are immutable.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, upd *Review) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rv.Findings = upd.Findings
	rv.Plan = upd.Plan
	rv.WoundClassification = upd.WoundClassification
	rv.WoundPhase = upd.WoundPhase
	rv.WoundLocation = upd.WoundLocation
	rv.WoundLength = upd.WoundLength
	rv.WoundWidth = upd.WoundWidth
	rv.WoundDepth = upd.WoundDepth
	rv.ProcedurePlanned = upd.ProcedurePlanned
	rv.ProcedureDate = upd.ProcedureDate
	rv.ProcedureDetails = upd.ProcedureDetails
	rv.FollowUpDate = upd.FollowUpDate
	rv.FollowUpNotes = upd.FollowUpNotes
	if err := rv.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}
	entityID := rv.ID.String()
	s.auditor.Record(ctx, actor, audit.ActionModified, "review", &entityID, nil)
	return rv, nil
}

func (s *Service) ListByConsult(ctx context.Context, consultRef uuid.UUID) ([]*Review, error) {
	return s.repo.ListByConsult(ctx, consultRef)
}
