package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/repository"
)

// Store is the part of the repository the duty calendar reads from.
type Store interface {
	ListAttendance(ctx context.Context, query repository.AttendanceQuery) ([]model.AttendanceRecord, error)
	ListAssignments(ctx context.Context, query repository.AssignmentQuery) ([]model.DutyAssignment, error)
	ListEvents(ctx context.Context, query repository.EventQuery) ([]model.MinistryEvent, error)
}

type Manager struct {
	Logger *slog.Logger
	Store  Store
}

func NewManager(logger *slog.Logger, store Store) *Manager {
	return &Manager{Logger: logger, Store: store}
}

// Duties collects the member's duties for one month: marked attendance,
// weekday mass assignments and ministry events including recurrences.
func (m *Manager) Duties(ctx context.Context, memberID uuid.UUID, year int, month time.Month) (Duties, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	from := model.NewDate(year, month, 1)
	to := model.NewDate(year, month, DaysIn(year, month))
	duties := Duties{}

	records, err := m.Store.ListAttendance(ctx, repository.AttendanceQuery{MemberID: memberID, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance duties: %w", err)
	}
	for _, r := range records {
		duties.Add(r.EventDate.Day(), AttendanceDuty(r))
	}

	assignments, err := m.Store.ListAssignments(ctx, repository.AssignmentQuery{Year: year, Month: month, MemberID: memberID})
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment duties: %w", err)
	}
	for _, a := range assignments {
		for _, d := range a.Slot().Dates() {
			duties.Add(d.Day(), AssignmentDuty(a))
		}
	}

	events, err := m.Store.ListEvents(ctx, repository.EventQuery{From: from, To: to, IncludeRecurring: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load event duties: %w", err)
	}
	for _, e := range events {
		dates, err := Occurrences(e, from, to)
		if err != nil {
			m.Logger.WarnContext(ctx, "Skipping event with invalid recurrence", "event_id", e.ID, "error", err)
			continue
		}
		for _, d := range dates {
			duties.Add(d.Day(), EventDuty(e))
		}
	}

	return duties, nil
}

// Month returns the 42-cell grid for the member's duties.
func (m *Manager) Month(ctx context.Context, memberID uuid.UUID, year int, month time.Month) ([]Cell, error) {
	duties, err := m.Duties(ctx, memberID, year, month)
	if err != nil {
		return nil, err
	}
	return MonthGrid(year, month, duties)
}
