package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/psconsult/psconsult/internal/platform/apperr"
)

// Wound classifications recorded during a review.
const (
	WoundClean             = "clean"
	WoundCleanContaminated = "clean_contaminated"
	WoundContaminated      = "contaminated"
	WoundDirtyInfected     = "dirty_infected"
)

// Healing phases.
const (
	PhaseHemostasis    = "hemostasis"
	PhaseInflammatory  = "inflammatory"
	PhaseProliferative = "proliferative"
	PhaseRemodeling    = "remodeling"
)

func validWoundClassification(c string) bool {
	switch c {
	case WoundClean, WoundCleanContaminated, WoundContaminated, WoundDirtyInfected:
		return true
	}
	return false
}

func validWoundPhase(p string) bool {
	switch p {
	case PhaseHemostasis, PhaseInflammatory, PhaseProliferative, PhaseRemodeling:
		return true
	}
	return false
}

// Review is a clinical assessment recorded against a consult by a team
// member. Recording one moves the consult to reviewed, or to
// procedure_planned when an operation is booked.
type Review struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ConsultRef   uuid.UUID `db:"consult_ref" json:"consult_ref"`
	ReviewerID   uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	ReviewerName string    `db:"reviewer_name" json:"reviewer_name"`
	Designation  *string   `db:"designation" json:"designation,omitempty"`

	Findings string `db:"findings" json:"findings"`
	Plan     string `db:"plan" json:"plan"`

	WoundClassification *string  `db:"wound_classification" json:"wound_classification,omitempty"`
	WoundPhase          *string  `db:"wound_phase" json:"wound_phase,omitempty"`
	WoundLocation       *string  `db:"wound_location" json:"wound_location,omitempty"`
	WoundLength         *float64 `db:"wound_length" json:"wound_length,omitempty"`
	WoundWidth          *float64 `db:"wound_width" json:"wound_width,omitempty"`
	WoundDepth          *float64 `db:"wound_depth" json:"wound_depth,omitempty"`

	ProcedurePlanned bool       `db:"procedure_planned" json:"procedure_planned"`
	ProcedureDate    *time.Time `db:"procedure_date" json:"procedure_date,omitempty"`
	ProcedureDetails *string    `db:"procedure_details" json:"procedure_details,omitempty"`
	FollowUpDate     *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	FollowUpNotes    *string    `db:"follow_up_notes" json:"follow_up_notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks a review submission.
func (r *Review) Validate() error {
	if r.ConsultRef == uuid.Nil {
		return apperr.Validation("consult_ref is required")
	}
	if len(r.Findings) < 5 {
		return apperr.Validation("findings must be at least 5 characters")
	}
	if r.WoundClassification != nil && !validWoundClassification(*r.WoundClassification) {
		return apperr.Validation("invalid wound_classification: %s", *r.WoundClassification)
	}
	if r.WoundPhase != nil && !validWoundPhase(*r.WoundPhase) {
		return apperr.Validation("invalid wound_phase: %s", *r.WoundPhase)
	}
	for _, m := range []*float64{r.WoundLength, r.WoundWidth, r.WoundDepth} {
		if m != nil && *m < 0 {
			return apperr.Validation("wound measurements must not be negative")
		}
	}
	return nil
}
