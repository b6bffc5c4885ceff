package schedule

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/psconsult/psconsult/internal/platform/apperr"
)

// Service types that appear on the weekly unit schedule.
const (
	ServiceClinic    = "clinic"
	ServiceTheatre   = "theatre"
	ServiceWardRound = "ward_round"
)

func validServiceType(s string) bool {
	switch s {
	case ServiceClinic, ServiceTheatre, ServiceWardRound:
		return true
	}
	return false
}

var timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Entry is one recurring slot on the unit's weekly schedule. DayOfWeek
// follows time.Weekday (0 = Sunday).
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ServiceType string    `db:"service_type" json:"service_type"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Location    *string   `db:"location" json:"location,omitempty"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Validate checks a schedule entry before it is stored.
func (e *Entry) Validate() error {
	if !validServiceType(e.ServiceType) {
		return apperr.Validation("invalid service_type: %s", e.ServiceType)
	}
	if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
		return apperr.Validation("day_of_week must be 0 (Sunday) through 6 (Saturday)")
	}
	if !timeOfDay.MatchString(e.StartTime) {
		return apperr.Validation("start_time must be HH:MM")
	}
	if !timeOfDay.MatchString(e.EndTime) {
		return apperr.Validation("end_time must be HH:MM")
	}
	if e.EndTime <= e.StartTime {
		return apperr.Validation("end_time must be after start_time")
	}
	return nil
}
