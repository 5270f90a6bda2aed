package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ministry/internal/calendar"
	"ministry/internal/model"
	"ministry/internal/notifications"
	"ministry/internal/repository"
)

type CreateEventRequest struct {
	Title      string     `json:"title" validate:"required,max=200"`
	Date       model.Date `json:"date"`
	Time       string     `json:"time" validate:"required,event_time"`
	Conductor  string     `json:"conductor" validate:"required,max=100"`
	Purpose    string     `json:"purpose" validate:"required,max=500"`
	Location   string     `json:"location" validate:"max=200"`
	Recurrence string     `json:"recurrence" validate:"max=500"`
}

type UpdateEventRequest struct {
	Title      *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Date       *model.Date        `json:"date"`
	Time       *string            `json:"time" validate:"omitempty,event_time"`
	Conductor  *string            `json:"conductor" validate:"omitempty,min=1,max=100"`
	Purpose    *string            `json:"purpose" validate:"omitempty,min=1,max=500"`
	Location   *string            `json:"location" validate:"omitempty,max=200"`
	Recurrence *string            `json:"recurrence" validate:"omitempty,max=500"`
	Status     *model.EventStatus `json:"status" validate:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
}

type EventService struct {
	repo      repository.Repository
	validator Validator
	notifier  *notifications.Notifier
	composer  notifications.Composer
	audit     *AuditService
	logger    *slog.Logger
	clock     Clock
}

func NewEventService(repo repository.Repository, v Validator, notifier *notifications.Notifier, composer notifications.Composer,
	audit *AuditService, logger *slog.Logger, clock Clock) *EventService {
	return &EventService{repo: repo, validator: v, notifier: notifier, composer: composer, audit: audit, logger: logger, clock: clock}
}

func checkRecurrence(rule string) error {
	if err := calendar.ValidateRecurrence(rule); err != nil {
		if errors.Is(err, calendar.ErrInvalidRecurrence) {
			return invalid("%s", err.Error())
		}
		return err
	}
	return nil
}

// List returns the year's events. Only admins may include cancelled ones.
func (s *EventService) List(ctx context.Context, caller model.Identity, year int, includeCancelled bool) ([]model.MinistryEvent, error) {
	events, err := s.repo.ListEvents(ctx, repository.EventQuery{
		Year:             year,
		IncludeCancelled: includeCancelled && model.IsAdmin(caller),
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.MinistryEvent{}
	}
	return events, nil
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (model.MinistryEvent, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *EventService) Create(ctx context.Context, actor model.Identity, req CreateEventRequest) (model.MinistryEvent, error) {
	if err := validate(s.validator, req); err != nil {
		return model.MinistryEvent{}, err
	}
	if req.Date.IsZero() {
		return model.MinistryEvent{}, invalid("date is required")
	}
	if err := checkRecurrence(req.Recurrence); err != nil {
		return model.MinistryEvent{}, err
	}

	event := model.MinistryEvent{
		Title:      strings.TrimSpace(req.Title),
		Date:       req.Date,
		Time:       req.Time,
		Conductor:  strings.TrimSpace(req.Conductor),
		Purpose:    strings.TrimSpace(req.Purpose),
		Location:   strings.TrimSpace(req.Location),
		Status:     model.EventStatusScheduled,
		Recurrence: strings.TrimSpace(req.Recurrence),
		CreatedBy:  actor.SubjectID(),
	}
	if err := s.repo.CreateEvent(ctx, &event); err != nil {
		return model.MinistryEvent{}, err
	}

	s.announce(ctx, s.composer.NewEvent(event))
	s.audit.Record(ctx, actor, "event.created", map[string]any{"event_id": event.ID})
	return event, nil
}

// Update applies the set fields. Moving the date or time notifies members.
func (s *EventService) Update(ctx context.Context, actor model.Identity, id uuid.UUID, req UpdateEventRequest) (model.MinistryEvent, error) {
	if err := validate(s.validator, req); err != nil {
		return model.MinistryEvent{}, err
	}
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return model.MinistryEvent{}, err
	}
	previous := event

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Date != nil {
		if req.Date.IsZero() {
			return model.MinistryEvent{}, invalid("date cannot be empty")
		}
		event.Date = *req.Date
	}
	if req.Time != nil {
		event.Time = *req.Time
	}
	if req.Conductor != nil {
		event.Conductor = strings.TrimSpace(*req.Conductor)
	}
	if req.Purpose != nil {
		event.Purpose = strings.TrimSpace(*req.Purpose)
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Recurrence != nil {
		if err := checkRecurrence(*req.Recurrence); err != nil {
			return model.MinistryEvent{}, err
		}
		event.Recurrence = strings.TrimSpace(*req.Recurrence)
	}
	if req.Status != nil {
		event.Status = *req.Status
	}

	if err := s.repo.UpdateEvent(ctx, &event); err != nil {
		return model.MinistryEvent{}, err
	}

	moved := !event.Date.Equal(previous.Date) || event.Time != previous.Time
	if moved && event.Status != model.EventStatusCancelled {
		s.announce(ctx, s.composer.ScheduleChange(event, previous))
	}
	s.audit.Record(ctx, actor, "event.updated", map[string]any{"event_id": event.ID})
	return event, nil
}

// Cancel marks the event CANCELLED. Events are never deleted.
func (s *EventService) Cancel(ctx context.Context, actor model.Identity, id uuid.UUID) (model.MinistryEvent, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return model.MinistryEvent{}, err
	}
	if event.Status == model.EventStatusCancelled {
		return event, nil
	}
	event.Status = model.EventStatusCancelled
	if err := s.repo.UpdateEvent(ctx, &event); err != nil {
		return model.MinistryEvent{}, err
	}
	s.audit.Record(ctx, actor, "event.cancelled", map[string]any{"event_id": event.ID})
	return event, nil
}

// announce stores a notification about an event change. The change itself
// already succeeded, so failures are only logged.
func (s *EventService) announce(ctx context.Context, n model.Notification) {
	if _, err := s.notifier.Notify(ctx, &n); err != nil {
		s.logger.ErrorContext(ctx, "Failed to notify members about event", "title", n.Title, "error", err)
	}
}

// SendReminders notifies members of every occurrence starting within lead of
// now. Each occurrence is reminded at most once. It returns how many were sent.
func (s *EventService) SendReminders(ctx context.Context, lead time.Duration) (int, error) {
	now := s.clock.Now()
	until := now.Add(lead)
	from, to := model.DateOf(now), model.DateOf(until)

	events, err := s.repo.ListEvents(ctx, repository.EventQuery{From: from, To: to, IncludeRecurring: true})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, event := range events {
		if event.Status != model.EventStatusScheduled {
			continue
		}
		dates, err := calendar.Occurrences(event, from, to)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping event with unreadable recurrence", "event_id", event.ID, "error", err)
			continue
		}
		for _, on := range dates {
			occurrence := event
			occurrence.Date = on
			start := occurrence.StartsAt(now.Location())
			if start.Before(now) || start.After(until) {
				continue
			}
			n := s.composer.EventReminder(event, on)
			created, err := s.notifier.Notify(ctx, &n)
			if err != nil {
				return sent, err
			}
			if created {
				sent++
			}
		}
	}
	return sent, nil
}
