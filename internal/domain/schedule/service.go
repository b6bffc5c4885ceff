package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.IsActive = true
	return s.repo.Insert(ctx, e)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, e *Entry) (*Entry, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListActive(ctx context.Context) ([]*Entry, error) {
	return s.repo.ListActive(ctx)
}

// TodayView is what the dashboard shows about the unit's day: the entries
// running today, a human message, and the next clinic and theatre days.
type TodayView struct {
	Day         string   `json:"day"`
	Entries     []*Entry `json:"entries"`
	Message     string   `json:"message"`
	NextClinic  *Entry   `json:"next_clinic,omitempty"`
	NextTheatre *Entry   `json:"next_theatre,omitempty"`
}

// Today assembles the schedule view for the current weekday.
func (s *Service) Today(ctx context.Context) (*TodayView, error) {
	entries, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	today := int(s.now().Weekday())
	view := &TodayView{
		Day:     s.now().Weekday().String(),
		Entries: []*Entry{},
	}

	for _, e := range entries {
		if e.DayOfWeek == today {
			view.Entries = append(view.Entries, e)
		}
	}
	view.NextClinic = nextOfType(entries, today, ServiceClinic)
	view.NextTheatre = nextOfType(entries, today, ServiceTheatre)
	view.Message = todayMessage(view.Entries)
	return view, nil
}

// nextOfType finds the soonest upcoming entry of the given service type,
// scanning forward from tomorrow and wrapping the week. Today's own entries
// are excluded; they already appear in the day view.
func nextOfType(entries []*Entry, today int, serviceType string) *Entry {
	for offset := 1; offset <= 7; offset++ {
		day := (today + offset) % 7
		for _, e := range entries {
			if e.ServiceType == serviceType && e.DayOfWeek == day {
				return e
			}
		}
	}
	return nil
}

func todayMessage(todays []*Entry) string {
	if len(todays) == 0 {
		return "No scheduled unit activities today. Ward cover as usual."
	}
	for _, e := range todays {
		if e.ServiceType == ServiceTheatre {
			return fmt.Sprintf("Theatre day today (%s-%s). Non-urgent reviews may be delayed.", e.StartTime, e.EndTime)
		}
	}
	for _, e := range todays {
		if e.ServiceType == ServiceClinic {
			return fmt.Sprintf("Clinic day today (%s-%s). Routine consults will be seen in clinic.", e.StartTime, e.EndTime)
		}
	}
	return "Ward round day. The team will review inpatient consults."
}
