package consult

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/psconsult/psconsult/internal/platform/apperr"
	"github.com/psconsult/psconsult/internal/platform/auth"
)

// Consult lifecycle statuses.
const (
	StatusPending          = "pending"
	StatusAccepted         = "accepted"
	StatusOnTheWay         = "on_the_way"
	StatusReviewed         = "reviewed"
	StatusProcedurePlanned = "procedure_planned"
	StatusCompleted        = "completed"
	StatusCancelled        = "cancelled"
)

// Urgency levels for a consult request.
const (
	UrgencyRoutine   = "routine"
	UrgencyUrgent    = "urgent"
	UrgencyEmergency = "emergency"
)

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusOnTheWay, StatusReviewed,
		StatusProcedurePlanned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func validUrgency(u string) bool {
	switch u {
	case UrgencyRoutine, UrgencyUrgent, UrgencyEmergency:
		return true
	}
	return false
}

// Sync statuses for submissions queued on an offline device.
const (
	SyncStatusSynced  = "synced"
	SyncStatusPending = "pending_sync"
)

func validDesignation(d string) bool {
	switch d {
	case "HO", "Registrar", "Senior Registrar":
		return true
	}
	return false
}

// Consult is a request from an inviting unit for a plastic-surgery review.
// ConsultID is the human-facing identifier in the form PSC-YYYY-NNNNN,
// allocated per calendar year.
type Consult struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ConsultID   string    `db:"consult_id" json:"consult_id"`
	ClientToken *string   `db:"client_token" json:"client_token,omitempty"`

	PatientName    string     `db:"patient_name" json:"patient_name"`
	HospitalNumber string     `db:"hospital_number" json:"hospital_number"`
	Age            int        `db:"age" json:"age"`
	Sex            string     `db:"sex" json:"sex"`
	Ward           string     `db:"ward" json:"ward"`
	Bed            *string    `db:"bed" json:"bed,omitempty"`
	AdmissionDate  *time.Time `db:"admission_date" json:"admission_date,omitempty"`
	Diagnosis      string     `db:"diagnosis" json:"diagnosis"`
	Reason         string     `db:"reason" json:"reason"`
	ReasonCategory *string    `db:"reason_category" json:"reason_category,omitempty"`
	Urgency        string     `db:"urgency" json:"urgency"`

	InvitingUnit       string  `db:"inviting_unit" json:"inviting_unit"`
	ConsultantInCharge *string `db:"consultant_in_charge" json:"consultant_in_charge,omitempty"`
	ContactPerson      string  `db:"contact_person" json:"contact_person"`
	ContactDesignation *string `db:"contact_designation" json:"contact_designation,omitempty"`
	ContactPhone       string  `db:"contact_phone" json:"contact_phone"`
	AlternatePhone     *string `db:"alternate_phone" json:"alternate_phone,omitempty"`

	Status           string     `db:"status" json:"status"`
	SyncStatus       string     `db:"sync_status" json:"sync_status"`
	NotificationSent bool       `db:"notification_sent" json:"notification_sent"`

	CreatedBy      *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	AcceptedBy     *uuid.UUID `db:"accepted_by" json:"accepted_by,omitempty"`
	AcceptedAt     *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	AcknowledgedBy *uuid.UUID `db:"acknowledged_by" json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	ReviewedAt     *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FormatConsultID renders the human-facing identifier for a year and
// sequence number, e.g. PSC-2026-00042.
func FormatConsultID(year, seq int) string {
	return fmt.Sprintf("PSC-%04d-%05d", year, seq)
}

// Validate checks submission fields. Missing or out-of-range values reject
// the whole request; nothing is persisted on failure.
func (c *Consult) Validate() error {
	if c.PatientName == "" {
		return apperr.Validation("patient_name is required")
	}
	if c.Age < 0 || c.Age > 150 {
		return apperr.Validation("age must be between 0 and 150")
	}
	if c.Sex != "Male" && c.Sex != "Female" {
		return apperr.Validation("sex must be Male or Female")
	}
	if c.Ward == "" {
		return apperr.Validation("ward is required")
	}
	if c.InvitingUnit == "" {
		return apperr.Validation("inviting_unit is required")
	}
	if c.Diagnosis == "" {
		return apperr.Validation("diagnosis is required")
	}
	if len(c.ContactPhone) < 7 {
		return apperr.Validation("contact_phone must be at least 7 characters")
	}
	if c.ContactDesignation != nil && !validDesignation(*c.ContactDesignation) {
		return apperr.Validation("invalid contact_designation: %s", *c.ContactDesignation)
	}
	if c.Urgency == "" {
		c.Urgency = UrgencyRoutine
	}
	if !validUrgency(c.Urgency) {
		return apperr.Validation("invalid urgency: %s", c.Urgency)
	}
	if c.SyncStatus == "" {
		c.SyncStatus = SyncStatusSynced
	}
	return nil
}

// CanViewAll reports whether a role sees every consult. Inviting units see
// only their own submissions.
func CanViewAll(role string) bool {
	return auth.IsTeamRole(role) || role == auth.RoleAdmin
}

// CanView reports whether the actor may see this consult.
func CanView(actor *auth.Actor, c *Consult) bool {
	if actor == nil {
		return false
	}
	if CanViewAll(actor.Role) {
		return true
	}
	return c.CreatedBy != nil && *c.CreatedBy == actor.ID
}

// CanSetStatus reports whether a role may drive the consult lifecycle.
func CanSetStatus(role string) bool {
	return auth.IsTeamRole(role) || role == auth.RoleAdmin
}

// NotificationMessage is the text fanned out to the team when a consult
// arrives.
func (c *Consult) NotificationMessage() string {
	return fmt.Sprintf("New consult from %s: %s (%s). Urgency: %s. Contact: %s",
		c.InvitingUnit, c.PatientName, c.Ward, c.Urgency, c.ContactPhone)
}

// StatusChangeMessage is the text sent to the consult's creator when the
// team moves its status.
func (c *Consult) StatusChangeMessage(oldStatus string) string {
	return fmt.Sprintf("Consult %s for %s: status changed from %s to %s",
		c.ConsultID, c.PatientName, oldStatus, c.Status)
}

// Acknowledgement is the receipt returned to submitters. It carries only
// the identifier and timestamp the submitting ward needs to reference the
// consult later; the full record stays behind the authenticated read paths.
type Acknowledgement struct {
	Status     string     `json:"status"`
	ConsultID  string     `json:"consult_id,omitempty"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
	Duplicate  bool       `json:"duplicate"`
	Message    string     `json:"message"`
}

// NewAcknowledgement builds the submission receipt for a stored consult.
// Duplicate submissions acknowledge the original record.
func NewAcknowledgement(c *Consult, wasNew bool) Acknowledgement {
	receivedAt := c.CreatedAt
	ack := Acknowledgement{
		Status:     "success",
		ConsultID:  c.ConsultID,
		ReceivedAt: &receivedAt,
		Duplicate:  !wasNew,
		Message:    fmt.Sprintf("Consult request received as %s", c.ConsultID),
	}
	if !wasNew {
		ack.Message = fmt.Sprintf("Duplicate submission: consult %s was already recorded", c.ConsultID)
	}
	return ack
}
