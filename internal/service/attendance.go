package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/monitoring"
	"ministry/internal/repository"
)

type AttendanceEntry struct {
	MemberID uuid.UUID              `json:"member_id" validate:"required"`
	Status   model.AttendanceStatus `json:"status" validate:"required,attendance_status"`
	Notes    string                 `json:"notes" validate:"max=500"`
}

type MarkAttendanceRequest struct {
	EventType   model.EventType   `json:"event_type" validate:"required,event_type"`
	EventDate   model.Date        `json:"event_date"`
	ServiceTime model.ServiceTime `json:"service_time" validate:"service_time"`
	Records     []AttendanceEntry `json:"records" validate:"required,min=1,dive"`
}

type AttendanceFilter struct {
	EventType   model.EventType
	Date        model.Date
	ServiceTime *model.ServiceTime
}

// AttendanceSheet is the marked records of one occasion with their tally.
type AttendanceSheet struct {
	Records []model.AttendanceRecord `json:"records"`
	Summary model.AttendanceSummary  `json:"summary"`
}

type MonthlyRow struct {
	MemberID     uuid.UUID `json:"member_id"`
	Present      bool      `json:"present"`
	Absent       bool      `json:"absent"`
	Excused      bool      `json:"excused"`
	ExcuseLetter string    `json:"excuse_letter"`
}

type MonthlyEntry struct {
	MemberID     uuid.UUID    `json:"member_id" validate:"required"`
	Present      bool         `json:"present"`
	Excused      bool         `json:"excused"`
	ExcuseLetter string       `json:"excuse_letter" validate:"max=500"`
	DueChecked   bool         `json:"due_checked"`
	DueAmount    model.Amount `json:"due_amount" validate:"gte=0"`
}

type SaveMonthlyRequest struct {
	Month      int            `json:"month" validate:"required,min=1,max=12"`
	Year       int            `json:"year" validate:"required,min=2000,max=2100"`
	Attendance []MonthlyEntry `json:"attendance" validate:"dive"`
}

type AttendanceService struct {
	repo      repository.Repository
	validator Validator
	audit     *AuditService
	metrics   *monitoring.Metrics
	logger    *slog.Logger
	clock     Clock
}

func NewAttendanceService(repo repository.Repository, v Validator, audit *AuditService,
	metrics *monitoring.Metrics, logger *slog.Logger, clock Clock) *AttendanceService {
	return &AttendanceService{repo: repo, validator: v, audit: audit, metrics: metrics, logger: logger, clock: clock}
}

// normalizeServiceTime gives masses an AM default and strips the slot from other occasions.
func normalizeServiceTime(eventType model.EventType, st model.ServiceTime) model.ServiceTime {
	if !eventType.IsMass() {
		return model.ServiceTimeNone
	}
	if st == model.ServiceTimeNone {
		return model.ServiceTimeAM
	}
	return st
}

// Mark upserts a batch of records for one occasion and returns its sheet.
func (s *AttendanceService) Mark(ctx context.Context, actor model.Identity, req MarkAttendanceRequest) (AttendanceSheet, error) {
	if err := validate(s.validator, req); err != nil {
		return AttendanceSheet{}, err
	}
	if req.EventDate.IsZero() {
		return AttendanceSheet{}, invalid("event_date is required")
	}
	st := normalizeServiceTime(req.EventType, req.ServiceTime)

	for _, entry := range req.Records {
		if _, err := s.repo.GetMemberByID(ctx, entry.MemberID); err != nil {
			return AttendanceSheet{}, fmt.Errorf("member %s: %w", entry.MemberID, err)
		}
	}

	recordedBy := actorID(actor)
	for _, entry := range req.Records {
		record := model.AttendanceRecord{
			MemberID:    entry.MemberID,
			EventType:   req.EventType,
			EventDate:   req.EventDate,
			ServiceTime: st,
			Status:      entry.Status,
			Notes:       entry.Notes,
			RecordedBy:  recordedBy,
		}
		if err := s.repo.UpsertAttendance(ctx, &record); err != nil {
			return AttendanceSheet{}, err
		}
	}

	s.metrics.RecordAttendance(ctx, string(req.EventType), len(req.Records))
	s.audit.Record(ctx, actor, "attendance.marked", map[string]any{
		"event_type": req.EventType, "event_date": req.EventDate, "service_time": st, "count": len(req.Records),
	})
	return s.List(ctx, AttendanceFilter{EventType: req.EventType, Date: req.EventDate, ServiceTime: &st})
}

// List returns the sheet of one occasion tallied against the active roster.
// Event type and date are required; a mass without a service time means the AM slot.
func (s *AttendanceService) List(ctx context.Context, f AttendanceFilter) (AttendanceSheet, error) {
	if !f.EventType.Valid() {
		return AttendanceSheet{}, invalid("unknown event type %q", f.EventType)
	}
	if f.Date.IsZero() {
		return AttendanceSheet{}, invalid("date is required")
	}
	var st model.ServiceTime
	if f.ServiceTime != nil {
		st = *f.ServiceTime
	}
	if st != model.ServiceTimeNone && st != model.ServiceTimeAM && st != model.ServiceTimePM {
		return AttendanceSheet{}, invalid("service time must be AM or PM")
	}
	st = normalizeServiceTime(f.EventType, st)

	records, err := s.repo.ListAttendance(ctx, repository.AttendanceQuery{
		EventType:   f.EventType,
		ServiceTime: &st,
		From:        f.Date,
		To:          f.Date,
	})
	if err != nil {
		return AttendanceSheet{}, err
	}
	active, err := s.repo.CountMembers(ctx, model.MemberStatusActive)
	if err != nil {
		return AttendanceSheet{}, err
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	return AttendanceSheet{Records: records, Summary: model.SummarizeAttendance(records, int(active))}, nil
}

func monthStart(year, month int) model.Date {
	return model.NewDate(year, time.Month(month), 1)
}

func (s *AttendanceService) Monthly(ctx context.Context, year, month int) ([]MonthlyRow, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month must be between 1 and 12")
	}
	day := monthStart(year, month)
	records, err := s.repo.ListAttendance(ctx, repository.AttendanceQuery{
		EventType: model.EventTypeMonthlyMeeting,
		From:      day,
		To:        day,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]MonthlyRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, MonthlyRow{
			MemberID:     r.MemberID,
			Present:      r.Status == model.AttendanceStatusPresent,
			Absent:       r.Status == model.AttendanceStatusAbsent,
			Excused:      r.Status == model.AttendanceStatusExcused,
			ExcuseLetter: r.Notes,
		})
	}
	return rows, nil
}

// SaveMonthly records the monthly meeting sheet. Checked dues are stored as a
// paid DUES record for the month, one per member.
func (s *AttendanceService) SaveMonthly(ctx context.Context, actor model.Identity, req SaveMonthlyRequest) ([]MonthlyRow, error) {
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}
	day := monthStart(req.Year, req.Month)
	recordedBy := actorID(actor)

	for _, entry := range req.Attendance {
		if _, err := s.repo.GetMemberByID(ctx, entry.MemberID); err != nil {
			return nil, fmt.Errorf("member %s: %w", entry.MemberID, err)
		}

		record := model.AttendanceRecord{
			MemberID:   entry.MemberID,
			EventType:  model.EventTypeMonthlyMeeting,
			EventDate:  day,
			Status:     model.MonthlyStatus(entry.Present, entry.Excused),
			Notes:      entry.ExcuseLetter,
			RecordedBy: recordedBy,
		}
		if err := s.repo.UpsertAttendance(ctx, &record); err != nil {
			return nil, err
		}

		if entry.DueChecked && entry.DueAmount > 0 {
			if err := s.upsertMonthlyDue(ctx, entry.MemberID, day, entry.DueAmount, recordedBy); err != nil {
				return nil, err
			}
		}
	}

	s.metrics.RecordAttendance(ctx, string(model.EventTypeMonthlyMeeting), len(req.Attendance))
	s.audit.Record(ctx, actor, "attendance.monthly_saved", map[string]any{
		"month": req.Month, "year": req.Year, "count": len(req.Attendance),
	})
	return s.Monthly(ctx, req.Year, req.Month)
}

func MonthlyDuesTitle(month model.Date) string {
	return "Monthly dues for " + month.Format("January 2006")
}

func (s *AttendanceService) upsertMonthlyDue(ctx context.Context, memberID uuid.UUID, month model.Date, amount model.Amount, recordedBy *uuid.UUID) error {
	title := MonthlyDuesTitle(month)
	existing, err := s.repo.ListFinancialRecords(ctx, repository.FinancialQuery{
		Types:    []model.RecordType{model.RecordTypeDues},
		MemberID: memberID,
		From:     month,
		To:       month,
	})
	if err != nil {
		return err
	}

	today := s.clock.Today()
	payment := model.PaymentDetails{PaidDate: &today, Method: model.PaymentMethodCash, Notes: "Collected at monthly meeting"}

	for i := range existing {
		due := existing[i]
		if due.Title != title {
			continue
		}
		switch due.Status {
		case model.PaymentStatusWaived:
			return nil
		case model.PaymentStatusPaid:
			due.Amount = amount
		default:
			due.Amount = amount
			if err := due.MarkPaid(payment); err != nil {
				return err
			}
			s.metrics.RecordDuesPaid(ctx, string(payment.Method))
		}
		due.Member = nil
		return s.repo.UpdateFinancialRecord(ctx, &due)
	}

	due := model.FinancialRecord{
		MemberID:        memberID,
		Type:            model.RecordTypeDues,
		Title:           title,
		Category:        "Monthly dues",
		Amount:          amount,
		TransactionDate: month,
		Status:          model.PaymentStatusPaid,
		Payment:         payment,
		RecordedBy:      recordedBy,
	}
	if err := s.repo.CreateFinancialRecords(ctx, []model.FinancialRecord{due}); err != nil {
		return err
	}
	s.metrics.RecordDuesPaid(ctx, string(payment.Method))
	return nil
}
