package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ministry/internal/calendar"
	"ministry/internal/model"
	"ministry/internal/repository"
)

const (
	scheduleLimit         = 20
	scheduleRecentDuties  = 10
	scheduleEventLimit    = 10
	scheduleEventLookback = 30
)

type ScheduleKind string

const (
	ScheduleKindDuty  ScheduleKind = "duty"
	ScheduleKindEvent ScheduleKind = "event"
)

// ScheduleItem is one entry of a member's personal schedule.
type ScheduleItem struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Date     model.Date   `json:"date"`
	Time     string       `json:"time"`
	Location string       `json:"location"`
	Type     ScheduleKind `json:"type"`
	Status   string       `json:"status"`
}

type ScheduleService struct {
	repo     repository.Repository
	calendar *calendar.Manager
	clock    Clock
}

func NewScheduleService(repo repository.Repository, manager *calendar.Manager, clock Clock) *ScheduleService {
	return &ScheduleService{repo: repo, calendar: manager, clock: clock}
}

func checkMonth(year, month int) error {
	if month < 1 || month > 12 {
		return invalid("month must be between 1 and 12")
	}
	if year < 1900 || year > 2200 {
		return invalid("year %d is out of range", year)
	}
	return nil
}

func (s *ScheduleService) Duties(ctx context.Context, caller model.Identity, year, month int) (calendar.Duties, error) {
	member, err := memberOf(caller)
	if err != nil {
		return nil, err
	}
	if err := checkMonth(year, month); err != nil {
		return nil, err
	}
	return s.calendar.Duties(ctx, member.ID, year, time.Month(month))
}

func (s *ScheduleService) Calendar(ctx context.Context, caller model.Identity, year, month int) ([]calendar.Cell, error) {
	member, err := memberOf(caller)
	if err != nil {
		return nil, err
	}
	if err := checkMonth(year, month); err != nil {
		return nil, err
	}
	return s.calendar.Month(ctx, member.ID, year, time.Month(month))
}

// Schedule merges the member's recent attendance, this month's assigned
// weekday masses and ministry events from the last 30 days onward.
func (s *ScheduleService) Schedule(ctx context.Context, caller model.Identity) ([]ScheduleItem, error) {
	member, err := memberOf(caller)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	items := make([]ScheduleItem, 0, scheduleLimit)

	records, err := s.repo.ListAttendance(ctx, repository.AttendanceQuery{
		MemberID:    member.ID,
		Limit:       scheduleRecentDuties,
		NewestFirst: true,
	})
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		items = append(items, ScheduleItem{
			ID:       "attendance-" + r.ID.String(),
			Title:    fmt.Sprintf("%s - %s", r.EventType.Label(), r.Status),
			Date:     r.EventDate,
			Time:     string(r.ServiceTime),
			Location: "Parish",
			Type:     ScheduleKindDuty,
			Status:   dutyStatus(r.EventDate, today),
		})
	}

	assignments, err := s.repo.ListAssignments(ctx, repository.AssignmentQuery{
		Year:     today.Year(),
		Month:    today.Month(),
		MemberID: member.ID,
	})
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		for _, d := range a.Slot().Dates() {
			items = append(items, ScheduleItem{
				ID:       fmt.Sprintf("assignment-%s-%s", a.ID, d),
				Title:    calendar.AssignmentDuty(a),
				Date:     d,
				Time:     string(a.ServiceTime),
				Location: "Parish",
				Type:     ScheduleKindDuty,
				Status:   dutyStatus(d, today),
			})
		}
	}

	events, err := s.repo.ListEvents(ctx, repository.EventQuery{
		From:             today.AddDays(-scheduleEventLookback),
		IncludeCancelled: true,
		Limit:            scheduleEventLimit,
	})
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		location := e.Location
		if location == "" {
			location = "Parish"
		}
		items = append(items, ScheduleItem{
			ID:       "event-" + e.ID.String(),
			Title:    e.Title,
			Date:     e.Date,
			Time:     e.Time,
			Location: location,
			Type:     ScheduleKindEvent,
			Status:   e.ScheduleStatus(today),
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	if len(items) > scheduleLimit {
		items = items[:scheduleLimit]
	}
	return items, nil
}

func dutyStatus(day, today model.Date) string {
	if day.Before(today) {
		return "completed"
	}
	return "upcoming"
}
