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

func TestAssignmentService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	assignments := service.NewAssignmentService(f.repo, f.validator, f.audit, f.logger)
	maria := f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")
	ana := f.member(t, "Reyes", "Ana")

	slot, err := assignments.Assign(ctx, f.admin, service.AssignRequest{
		Day:         "Wednesday",
		ServiceTime: model.ServiceTimePM,
		Month:       3,
		Year:        2026,
		MemberIDs:   []uuid.UUID{maria.ID, jose.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "wednesday-PM-3-2026", slot.Key)
	require.Len(t, slot.Members, 2)
	assert.Equal(t, "Cruz, J.", slot.Members[0].DisplayName)

	t.Run("replace_slot_members", func(t *testing.T) {
		slot, err := assignments.Assign(ctx, f.admin, service.AssignRequest{
			Day:         "WEDNESDAY",
			ServiceTime: model.ServiceTimePM,
			Month:       3,
			Year:        2026,
			MemberIDs:   []uuid.UUID{ana.ID, maria.ID},
		})
		require.NoError(t, err)
		ids := []uuid.UUID{slot.Members[0].ID, slot.Members[1].ID}
		assert.ElementsMatch(t, []uuid.UUID{ana.ID, maria.ID}, ids)
	})

	t.Run("list_groups_by_key", func(t *testing.T) {
		slots, err := assignments.List(ctx, 2026, 3)
		require.NoError(t, err)
		require.Contains(t, slots, "wednesday-PM-3-2026")
		assert.Len(t, slots["wednesday-PM-3-2026"].Members, 2)

		slots, err = assignments.List(ctx, 2026, 4)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("sunday_is_not_a_duty_day", func(t *testing.T) {
		_, err := assignments.Assign(ctx, f.admin, service.AssignRequest{
			Day: "Sunday", ServiceTime: model.ServiceTimeAM, Month: 3, Year: 2026, MemberIDs: []uuid.UUID{maria.ID},
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("toggle_attendance", func(t *testing.T) {
		record, err := assignments.ToggleAttendance(ctx, f.admin, "wednesday-PM-3-2026", service.ToggleAttendanceRequest{
			MemberID: maria.ID,
			Date:     model.NewDate(2026, time.March, 11),
		})
		require.NoError(t, err)
		assert.Equal(t, model.EventTypeDailyMass, record.EventType)
		assert.Equal(t, model.ServiceTimePM, record.ServiceTime)
		assert.Equal(t, model.AttendanceStatusPresent, record.Status)

		record, err = assignments.ToggleAttendance(ctx, f.admin, "wednesday-PM-3-2026", service.ToggleAttendanceRequest{
			MemberID: maria.ID,
			Date:     model.NewDate(2026, time.March, 11),
			Status:   model.AttendanceStatusAbsent,
		})
		require.NoError(t, err)
		assert.Equal(t, model.AttendanceStatusAbsent, record.Status)

		records, err := f.repo.ListAttendance(ctx, repository.AttendanceQuery{MemberID: maria.ID})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("toggle_rejects_other_weekdays_and_unassigned", func(t *testing.T) {
		_, err := assignments.ToggleAttendance(ctx, f.admin, "wednesday-PM-3-2026", service.ToggleAttendanceRequest{
			MemberID: maria.ID,
			Date:     model.NewDate(2026, time.March, 12),
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		_, err = assignments.ToggleAttendance(ctx, f.admin, "wednesday-PM-3-2026", service.ToggleAttendanceRequest{
			MemberID: jose.ID,
			Date:     model.NewDate(2026, time.March, 11),
		})
		assert.ErrorIs(t, err, repository.ErrAssignmentNotFound)

		_, err = assignments.ToggleAttendance(ctx, f.admin, "someday-PM-3-2026", service.ToggleAttendanceRequest{
			MemberID: maria.ID,
			Date:     model.NewDate(2026, time.March, 11),
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("remove_member", func(t *testing.T) {
		require.NoError(t, assignments.RemoveMember(ctx, f.admin, "wednesday-PM-3-2026", ana.ID))
		err := assignments.RemoveMember(ctx, f.admin, "wednesday-PM-3-2026", ana.ID)
		assert.ErrorIs(t, err, repository.ErrAssignmentNotFound)
	})
}
