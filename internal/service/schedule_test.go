package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministry/internal/calendar"
	"ministry/internal/model"
	"ministry/internal/service"
)

func TestScheduleService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	maria := f.member(t, "Santos", "Maria")
	me := maria.Identity()

	attendance := newAttendanceService(f)
	_, err := attendance.Mark(ctx, f.admin, service.MarkAttendanceRequest{
		EventType: model.EventTypeSundayMass,
		EventDate: model.NewDate(2026, time.March, 8),
		Records:   []service.AttendanceEntry{{MemberID: maria.ID, Status: model.AttendanceStatusPresent}},
	})
	require.NoError(t, err)

	assignments := service.NewAssignmentService(f.repo, f.validator, f.audit, f.logger)
	_, err = assignments.Assign(ctx, f.admin, service.AssignRequest{
		Day: "Friday", ServiceTime: model.ServiceTimeAM, Month: 3, Year: 2026, MemberIDs: []uuid.UUID{maria.ID},
	})
	require.NoError(t, err)

	events := newEventService(f)
	_, err = events.Create(ctx, f.admin, service.CreateEventRequest{
		Title: "Recollection", Date: model.NewDate(2026, time.March, 14), Time: "13:30", Conductor: "Fr. Reyes", Purpose: "Lent",
	})
	require.NoError(t, err)

	schedule := service.NewScheduleService(f.repo, calendar.NewManager(f.logger, f.repo), f.clock)

	t.Run("duties", func(t *testing.T) {
		duties, err := schedule.Duties(ctx, me, 2026, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"Sunday Mass AM"}, duties[8])
		assert.Equal(t, []string{"Daily Mass AM"}, duties[6])
		assert.Equal(t, []string{"Daily Mass AM"}, duties[27])
		assert.Equal(t, []string{"Recollection - 1:30 PM"}, duties[14])
		assert.Empty(t, duties[9])
	})

	t.Run("calendar", func(t *testing.T) {
		cells, err := schedule.Calendar(ctx, me, 2026, 3)
		require.NoError(t, err)
		require.Len(t, cells, calendar.GridCells)
		assert.Equal(t, 1, cells[0].Day)
		assert.True(t, cells[0].IsCurrentMonth)
		assert.True(t, cells[7].HasDuty)
	})

	t.Run("schedule", func(t *testing.T) {
		items, err := schedule.Schedule(ctx, me)
		require.NoError(t, err)
		// one attendance, four Fridays and one event
		require.Len(t, items, 6)
		for i := 1; i < len(items); i++ {
			assert.False(t, items[i].Date.Before(items[i-1].Date))
		}
		assert.Equal(t, "2026-03-06", items[0].Date.String())
		assert.Equal(t, "completed", items[0].Status)
		assert.Equal(t, "Sunday Mass - PRESENT", items[1].Title)

		last := items[len(items)-1]
		assert.Equal(t, "2026-03-27", last.Date.String())
		assert.Equal(t, "upcoming", last.Status)
	})

	t.Run("member_only", func(t *testing.T) {
		_, err := schedule.Schedule(ctx, f.admin)
		assert.ErrorIs(t, err, service.ErrForbidden)

		_, err = schedule.Duties(ctx, me, 2026, 0)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestDashboardService_Admin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")
	jose.Status = model.MemberStatusInactive
	require.NoError(t, f.repo.UpdateMember(ctx, &jose))
	newcomer := testNewcomer(t, f)

	dues := newDuesService(f)
	_, err := dues.Create(ctx, f.admin, service.CreateDuesRequest{AllMembers: true, Title: "Fee", Amount: 10000})
	require.NoError(t, err)

	events := newEventService(f)
	for _, day := range []int{1, 12, 13, 14, 15, 16, 17} {
		_, err := events.Create(ctx, f.admin, service.CreateEventRequest{
			Title: "Practice", Date: model.NewDate(2026, time.March, day), Time: "16:00", Conductor: "Fr. Reyes", Purpose: "Drill",
		})
		require.NoError(t, err)
	}

	dashboard := service.NewDashboardService(f.repo, service.NewBirthdayService(f.repo, f.notifier, f.composer, f.logger, f.clock), f.clock)
	d, err := dashboard.Admin(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), d.Members.Active)
	assert.Equal(t, int64(1), d.Members.Inactive)
	assert.Equal(t, int64(3), d.Members.Total)
	assert.Equal(t, 1, d.ServiceLevels[model.ServiceLevelSenior])
	assert.Equal(t, 1, d.ServiceLevels[model.ServiceLevelAspirant])
	assert.Equal(t, 0, d.ServiceLevels[model.ServiceLevelJunior])
	assert.Equal(t, model.Amount(20000), d.Dues.Pending)
	require.Len(t, d.UpcomingEvents, 5)
	assert.Equal(t, "2026-03-12", d.UpcomingEvents[0].Date.String())
	require.Len(t, d.TodaysBirthdays, 1)
	assert.Equal(t, newcomer.ID, d.TodaysBirthdays[0].ID)
}

// testNewcomer is an active member who joined this year and was born today.
func testNewcomer(t *testing.T, f *fixture) model.Member {
	t.Helper()
	m := f.member(t, "Garcia", "Lito")
	m.DateOfInvestiture = datePtr(2026, time.January, 6)
	m.Birthday = datePtr(2012, time.March, 10)
	require.NoError(t, f.repo.UpdateMember(context.Background(), &m))
	return m
}
