package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/repository"
)

type AssignedMember struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

type AssignmentSlot struct {
	Key         string            `json:"key"`
	Day         string            `json:"day"`
	ServiceTime model.ServiceTime `json:"service_time"`
	Month       int               `json:"month"`
	Year        int               `json:"year"`
	Members     []AssignedMember  `json:"members"`
}

type AssignRequest struct {
	Day         string            `json:"day" validate:"required"`
	ServiceTime model.ServiceTime `json:"service_time" validate:"required,oneof=AM PM"`
	Month       int               `json:"month" validate:"required,min=1,max=12"`
	Year        int               `json:"year" validate:"required,min=2000,max=2100"`
	MemberIDs   []uuid.UUID       `json:"member_ids"`
}

type ToggleAttendanceRequest struct {
	MemberID uuid.UUID              `json:"member_id" validate:"required"`
	Date     model.Date             `json:"date"`
	Status   model.AttendanceStatus `json:"status" validate:"omitempty,attendance_status"`
}

type AssignmentService struct {
	repo      repository.Repository
	validator Validator
	audit     *AuditService
	logger    *slog.Logger
}

func NewAssignmentService(repo repository.Repository, v Validator, audit *AuditService, logger *slog.Logger) *AssignmentService {
	return &AssignmentService{repo: repo, validator: v, audit: audit, logger: logger}
}

func slotView(slot model.DutySlot) AssignmentSlot {
	return AssignmentSlot{
		Key:         slot.Key(),
		Day:         slot.Weekday.String(),
		ServiceTime: slot.ServiceTime,
		Month:       int(slot.Month),
		Year:        slot.Year,
		Members:     []AssignedMember{},
	}
}

func groupAssignments(assignments []model.DutyAssignment) map[string]AssignmentSlot {
	slots := make(map[string]AssignmentSlot)
	for _, a := range assignments {
		slot := a.Slot()
		view, ok := slots[slot.Key()]
		if !ok {
			view = slotView(slot)
		}
		member := AssignedMember{ID: a.MemberID}
		if a.Member != nil {
			member.DisplayName = a.Member.DisplayName()
		}
		view.Members = append(view.Members, member)
		slots[slot.Key()] = view
	}
	for key, view := range slots {
		sort.SliceStable(view.Members, func(i, j int) bool {
			return view.Members[i].DisplayName < view.Members[j].DisplayName
		})
		slots[key] = view
	}
	return slots
}

// List returns the month's slots keyed by "<day>-<time>-<month>-<year>".
func (s *AssignmentService) List(ctx context.Context, year, month int) (map[string]AssignmentSlot, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month must be between 1 and 12")
	}
	assignments, err := s.repo.ListAssignments(ctx, repository.AssignmentQuery{Year: year, Month: time.Month(month)})
	if err != nil {
		return nil, err
	}
	return groupAssignments(assignments), nil
}

// Assign replaces the members of one slot.
func (s *AssignmentService) Assign(ctx context.Context, actor model.Identity, req AssignRequest) (AssignmentSlot, error) {
	if err := validate(s.validator, req); err != nil {
		return AssignmentSlot{}, err
	}
	weekday, err := model.ParseDutyWeekday(req.Day)
	if err != nil {
		return AssignmentSlot{}, invalid("day must be Monday to Saturday")
	}
	slot := model.DutySlot{Weekday: weekday, ServiceTime: req.ServiceTime, Month: time.Month(req.Month), Year: req.Year}

	for _, id := range req.MemberIDs {
		member, err := s.repo.GetMemberByID(ctx, id)
		if err != nil {
			return AssignmentSlot{}, fmt.Errorf("member %s: %w", id, err)
		}
		if !member.IsActive() {
			return AssignmentSlot{}, invalid("member %s is inactive", id)
		}
	}

	if err := s.repo.ReplaceSlotAssignments(ctx, slot, req.MemberIDs); err != nil {
		return AssignmentSlot{}, err
	}
	s.audit.Record(ctx, actor, "assignment.replaced", map[string]any{"key": slot.Key(), "members": len(req.MemberIDs)})
	return s.slot(ctx, slot)
}

func (s *AssignmentService) slot(ctx context.Context, slot model.DutySlot) (AssignmentSlot, error) {
	assignments, err := s.repo.ListAssignments(ctx, repository.AssignmentQuery{Slot: &slot})
	if err != nil {
		return AssignmentSlot{}, err
	}
	if view, ok := groupAssignments(assignments)[slot.Key()]; ok {
		return view, nil
	}
	return slotView(slot), nil
}

func parseKey(key string) (model.DutySlot, error) {
	slot, err := model.ParseSlotKey(key)
	if err != nil {
		return model.DutySlot{}, invalid("%s", err.Error())
	}
	return slot, nil
}

func (s *AssignmentService) RemoveMember(ctx context.Context, actor model.Identity, key string, memberID uuid.UUID) error {
	slot, err := parseKey(key)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAssignment(ctx, slot, memberID); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "assignment.removed", map[string]any{"key": key, "member_id": memberID})
	return nil
}

// ToggleAttendance marks daily mass attendance for an assigned member on one
// of the slot's dates.
func (s *AssignmentService) ToggleAttendance(ctx context.Context, actor model.Identity, key string, req ToggleAttendanceRequest) (model.AttendanceRecord, error) {
	if err := validate(s.validator, req); err != nil {
		return model.AttendanceRecord{}, err
	}
	slot, err := parseKey(key)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if req.Date.IsZero() {
		return model.AttendanceRecord{}, invalid("date is required")
	}
	if !slot.Covers(req.Date) {
		return model.AttendanceRecord{}, invalid("%s is not a %s in %s %d", req.Date, slot.Weekday, slot.Month, slot.Year)
	}

	assigned, err := s.repo.ListAssignments(ctx, repository.AssignmentQuery{Slot: &slot, MemberID: req.MemberID})
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if len(assigned) == 0 {
		return model.AttendanceRecord{}, repository.ErrAssignmentNotFound
	}

	status := req.Status
	if status == "" {
		status = model.AttendanceStatusPresent
	}
	record := model.AttendanceRecord{
		MemberID:    req.MemberID,
		EventType:   model.EventTypeDailyMass,
		EventDate:   req.Date,
		ServiceTime: slot.ServiceTime,
		Status:      status,
		RecordedBy:  actorID(actor),
	}
	if err := s.repo.UpsertAttendance(ctx, &record); err != nil {
		return model.AttendanceRecord{}, err
	}
	return record, nil
}
