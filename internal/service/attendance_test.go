package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministry/internal/model"
	"ministry/internal/repository"
	"ministry/internal/service"
)

func newAttendanceService(f *fixture) *service.AttendanceService {
	return service.NewAttendanceService(f.repo, f.validator, f.audit, nil, f.logger, f.clock)
}

func TestAttendanceService_Mark(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	attendance := newAttendanceService(f)
	maria := f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")
	f.member(t, "Reyes", "Ana")

	sunday := model.NewDate(2026, time.March, 8)
	sheet, err := attendance.Mark(ctx, f.admin, service.MarkAttendanceRequest{
		EventType: model.EventTypeSundayMass,
		EventDate: sunday,
		Records: []service.AttendanceEntry{
			{MemberID: maria.ID, Status: model.AttendanceStatusPresent},
			{MemberID: jose.ID, Status: model.AttendanceStatusLate},
		},
	})
	require.NoError(t, err)
	require.Len(t, sheet.Records, 2)
	assert.Equal(t, model.ServiceTimeAM, sheet.Records[0].ServiceTime)
	assert.Equal(t, 3, sheet.Summary.Total)
	assert.Equal(t, 1, sheet.Summary.Present)
	assert.Equal(t, 1, sheet.Summary.Late)

	t.Run("remarking_upserts", func(t *testing.T) {
		sheet, err := attendance.Mark(ctx, f.admin, service.MarkAttendanceRequest{
			EventType:   model.EventTypeSundayMass,
			EventDate:   sunday,
			ServiceTime: model.ServiceTimeAM,
			Records:     []service.AttendanceEntry{{MemberID: jose.ID, Status: model.AttendanceStatusPresent, Notes: "arrived on time"}},
		})
		require.NoError(t, err)
		require.Len(t, sheet.Records, 2)
		assert.Equal(t, 2, sheet.Summary.Present)
		assert.Equal(t, 0, sheet.Summary.Late)
	})

	t.Run("pm_mass_is_separate", func(t *testing.T) {
		pm := model.ServiceTimePM
		sheet, err := attendance.List(ctx, service.AttendanceFilter{EventType: model.EventTypeSundayMass, Date: sunday, ServiceTime: &pm})
		require.NoError(t, err)
		assert.Empty(t, sheet.Records)
	})

	t.Run("list_without_service_time_reads_am_only", func(t *testing.T) {
		_, err := attendance.Mark(ctx, f.admin, service.MarkAttendanceRequest{
			EventType:   model.EventTypeSundayMass,
			EventDate:   sunday,
			ServiceTime: model.ServiceTimePM,
			Records: []service.AttendanceEntry{
				{MemberID: maria.ID, Status: model.AttendanceStatusPresent},
				{MemberID: jose.ID, Status: model.AttendanceStatusPresent},
			},
		})
		require.NoError(t, err)

		sheet, err := attendance.List(ctx, service.AttendanceFilter{EventType: model.EventTypeSundayMass, Date: sunday})
		require.NoError(t, err)
		require.Len(t, sheet.Records, 2)
		for _, r := range sheet.Records {
			assert.Equal(t, model.ServiceTimeAM, r.ServiceTime)
		}
		assert.Equal(t, 67, sheet.Summary.Rate)
		assert.Equal(t, 1, sheet.Summary.Unmarked)
	})

	t.Run("list_requires_one_occasion", func(t *testing.T) {
		_, err := attendance.List(ctx, service.AttendanceFilter{EventType: model.EventTypeSundayMass})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		_, err = attendance.List(ctx, service.AttendanceFilter{Date: sunday})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		evening := model.ServiceTime("NOON")
		_, err = attendance.List(ctx, service.AttendanceFilter{EventType: model.EventTypeSundayMass, Date: sunday, ServiceTime: &evening})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("service_time_dropped_for_meetings", func(t *testing.T) {
		sheet, err := attendance.Mark(ctx, f.admin, service.MarkAttendanceRequest{
			EventType:   model.EventTypeTraining,
			EventDate:   sunday,
			ServiceTime: model.ServiceTimePM,
			Records:     []service.AttendanceEntry{{MemberID: maria.ID, Status: model.AttendanceStatusExcused}},
		})
		require.NoError(t, err)
		require.Len(t, sheet.Records, 1)
		assert.Equal(t, model.ServiceTimeNone, sheet.Records[0].ServiceTime)
	})

	t.Run("unknown_member", func(t *testing.T) {
		_, err := attendance.Mark(ctx, f.admin, service.MarkAttendanceRequest{
			EventType: model.EventTypeSundayMass,
			EventDate: sunday,
			Records:   []service.AttendanceEntry{{MemberID: uuid.New(), Status: model.AttendanceStatusPresent}},
		})
		assert.ErrorIs(t, err, repository.ErrMemberNotFound)
	})

	t.Run("invalid_requests", func(t *testing.T) {
		_, err := attendance.Mark(ctx, f.admin, service.MarkAttendanceRequest{
			EventType: "PICNIC",
			EventDate: sunday,
			Records:   []service.AttendanceEntry{{MemberID: maria.ID, Status: model.AttendanceStatusPresent}},
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		_, err = attendance.Mark(ctx, f.admin, service.MarkAttendanceRequest{
			EventType: model.EventTypeSundayMass,
			Records:   []service.AttendanceEntry{{MemberID: maria.ID, Status: model.AttendanceStatusPresent}},
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestAttendanceService_SaveMonthly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	attendance := newAttendanceService(f)
	maria := f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")
	ana := f.member(t, "Reyes", "Ana")

	rows, err := attendance.SaveMonthly(ctx, f.admin, service.SaveMonthlyRequest{
		Month: 2,
		Year:  2026,
		Attendance: []service.MonthlyEntry{
			{MemberID: maria.ID, Present: true, DueChecked: true, DueAmount: 5000},
			{MemberID: jose.ID, Excused: true, ExcuseLetter: "school trip"},
			{MemberID: ana.ID},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byMember := map[uuid.UUID]service.MonthlyRow{}
	for _, r := range rows {
		byMember[r.MemberID] = r
	}
	assert.True(t, byMember[maria.ID].Present)
	assert.True(t, byMember[jose.ID].Excused)
	assert.Equal(t, "school trip", byMember[jose.ID].ExcuseLetter)
	assert.True(t, byMember[ana.ID].Absent)

	dues, err := f.repo.ListFinancialRecords(ctx, repository.FinancialQuery{MemberID: maria.ID})
	require.NoError(t, err)
	require.Len(t, dues, 1)
	assert.Equal(t, "Monthly dues for February 2026", dues[0].Title)
	assert.Equal(t, model.PaymentStatusPaid, dues[0].Status)
	assert.Equal(t, model.Amount(5000), dues[0].Amount)
	assert.Equal(t, "2026-02-01", dues[0].TransactionDate.String())

	t.Run("resaving_updates_the_same_due", func(t *testing.T) {
		_, err := attendance.SaveMonthly(ctx, f.admin, service.SaveMonthlyRequest{
			Month:      2,
			Year:       2026,
			Attendance: []service.MonthlyEntry{{MemberID: maria.ID, Present: true, DueChecked: true, DueAmount: 7500}},
		})
		require.NoError(t, err)

		dues, err := f.repo.ListFinancialRecords(ctx, repository.FinancialQuery{MemberID: maria.ID})
		require.NoError(t, err)
		require.Len(t, dues, 1)
		assert.Equal(t, model.Amount(7500), dues[0].Amount)
	})

	t.Run("waived_due_is_left_alone", func(t *testing.T) {
		dues, err := f.repo.ListFinancialRecords(ctx, repository.FinancialQuery{MemberID: maria.ID})
		require.NoError(t, err)
		due := dues[0]
		due.Status = model.PaymentStatusWaived
		due.Member = nil
		require.NoError(t, f.repo.UpdateFinancialRecord(ctx, &due))

		_, err = attendance.SaveMonthly(ctx, f.admin, service.SaveMonthlyRequest{
			Month:      2,
			Year:       2026,
			Attendance: []service.MonthlyEntry{{MemberID: maria.ID, Present: true, DueChecked: true, DueAmount: 9900}},
		})
		require.NoError(t, err)

		got, err := f.repo.GetFinancialRecord(ctx, due.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusWaived, got.Status)
		assert.Equal(t, model.Amount(7500), got.Amount)
	})

	t.Run("month_out_of_range", func(t *testing.T) {
		_, err := attendance.Monthly(ctx, 2026, 13)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}
