package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/psconsult/psconsult/internal/platform/apperr"
)

type mockRepo struct {
	items map[uuid.UUID]*Entry
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Entry)}
}

func (m *mockRepo) Insert(_ context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	m.items[e.ID] = e
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("schedule entry not found")
	}
	return e, nil
}

func (m *mockRepo) Update(_ context.Context, e *Entry) error {
	m.items[e.ID] = e
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) ListActive(_ context.Context) ([]*Entry, error) {
	var out []*Entry
	for _, e := range m.items {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func entry(serviceType string, day int) *Entry {
	return &Entry{
		ServiceType: serviceType,
		DayOfWeek:   day,
		StartTime:   "08:00",
		EndTime:     "13:00",
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"bad service type", func(e *Entry) { e.ServiceType = "rounds" }},
		{"day too high", func(e *Entry) { e.DayOfWeek = 7 }},
		{"day negative", func(e *Entry) { e.DayOfWeek = -1 }},
		{"bad start time", func(e *Entry) { e.StartTime = "8am" }},
		{"bad end time", func(e *Entry) { e.EndTime = "25:00" }},
		{"end before start", func(e *Entry) { e.StartTime = "14:00"; e.EndTime = "09:00" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry(ServiceClinic, 1)
			tt.mutate(e)
			if err := svc.Create(ctx, e); !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	good := entry(ServiceClinic, 1)
	if err := svc.Create(ctx, good); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
	if !good.IsActive {
		t.Error("new entry should be active")
	}
}

func TestTodayView(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	// Clinic on Monday, theatre on Wednesday.
	if err := svc.Create(ctx, entry(ServiceClinic, 1)); err != nil {
		t.Fatal(err)
	}
	if err := svc.Create(ctx, entry(ServiceTheatre, 3)); err != nil {
		t.Fatal(err)
	}

	// Fix "today" to a Monday.
	svc.now = func() time.Time { return time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC) }

	view, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if view.Day != "Monday" {
		t.Errorf("day = %q", view.Day)
	}
	if len(view.Entries) != 1 || view.Entries[0].ServiceType != ServiceClinic {
		t.Errorf("today's entries = %+v, want the Monday clinic", view.Entries)
	}
	if view.Message == "" {
		t.Error("expected a contextual message")
	}
	if view.NextTheatre == nil || view.NextTheatre.DayOfWeek != 3 {
		t.Error("next theatre should be Wednesday")
	}
	// Next clinic wraps to next Monday, not today.
	if view.NextClinic == nil || view.NextClinic.DayOfWeek != 1 {
		t.Error("next clinic should wrap to the following Monday")
	}
}

func TestTodayEmptySchedule(t *testing.T) {
	svc := NewService(newMockRepo())
	view, err := svc.Today(context.Background())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(view.Entries) != 0 || view.Message == "" {
		t.Errorf("empty schedule view: %+v", view)
	}
	if view.NextClinic != nil || view.NextTheatre != nil {
		t.Error("no upcoming entries expected")
	}
}

func TestTheatreMessageWins(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Create(ctx, entry(ServiceClinic, 1)); err != nil {
		t.Fatal(err)
	}
	if err := svc.Create(ctx, entry(ServiceTheatre, 1)); err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC) }

	view, err := svc.Today(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Theatre day today"; len(view.Message) < len(want) || view.Message[:len(want)] != want {
		t.Errorf("message = %q, want theatre message to take precedence", view.Message)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	e := entry(ServiceClinic, 1)
	if err := svc.Create(ctx, e); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(ctx, e.ID, entry(ServiceWardRound, 2))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ServiceType != ServiceWardRound || updated.DayOfWeek != 2 {
		t.Errorf("update not applied: %+v", updated)
	}

	if _, err := svc.Update(ctx, uuid.New(), entry(ServiceClinic, 1)); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("update missing: %v, want not found", err)
	}

	if err := svc.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, e.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("double delete: %v, want not found", err)
	}
}
