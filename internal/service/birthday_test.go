package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministry/internal/model"
	"ministry/internal/service"
)

func (f *fixture) memberBornOn(t *testing.T, surname, givenName string, birthday *model.Date) model.Member {
	t.Helper()
	m := f.member(t, surname, givenName)
	m.Birthday = birthday
	require.NoError(t, f.repo.UpdateMember(context.Background(), &m))
	return m
}

func TestBirthdayService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	birthdays := service.NewBirthdayService(f.repo, f.notifier, f.composer, f.logger, f.clock)

	today := f.memberBornOn(t, "Santos", "Maria", datePtr(2010, time.March, 10))
	f.memberBornOn(t, "Cruz", "Jose", datePtr(2009, time.December, 1))
	f.memberBornOn(t, "Reyes", "Ana", nil)
	gone := f.memberBornOn(t, "Lim", "Paolo", datePtr(2011, time.January, 2))
	gone.Status = model.MemberStatusInactive
	require.NoError(t, f.repo.UpdateMember(ctx, &gone))

	admin, err := f.repo.GetAdminByID(ctx, f.admin.ID)
	require.NoError(t, err)
	admin.Birthday = datePtr(1975, time.March, 10)
	require.NoError(t, f.db.Save(&admin).Error)

	list, err := birthdays.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "Fr. Reyes", list[0].Name)
	assert.Equal(t, service.BirthdayKindAdmin, list[0].Kind)
	assert.Equal(t, 51, list[0].Age)
	assert.True(t, list[0].IsToday)

	assert.Equal(t, today.ID, list[1].ID)
	assert.Equal(t, "Maria Santos", list[1].Name)
	assert.Equal(t, 16, list[1].Age)
	assert.Equal(t, service.BirthdayKindMember, list[1].Kind)
	assert.Equal(t, model.ServiceLevelSenior, list[1].ServiceLevel)

	assert.Equal(t, "Jose Cruz", list[2].Name)
	assert.Equal(t, 16, list[2].Age)
	assert.False(t, list[2].IsToday)

	t.Run("send_notices_once_per_day", func(t *testing.T) {
		sent, err := birthdays.SendNotices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, sent)

		sent, err = birthdays.SendNotices(ctx)
		require.NoError(t, err)
		assert.Zero(t, sent)

		greetings := notificationsOfType(t, f, model.NotificationTypeBirthday)
		require.Len(t, greetings, 2)
		messages := []string{greetings[0].Message, greetings[1].Message}
		assert.ElementsMatch(t, []string{"Birthday of Fr. Reyes", "Birthday of Maria Santos"}, messages)
	})
}

func TestBirthdayService_LeapDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.memberBornOn(t, "Santos", "Maria", datePtr(2008, time.February, 29))

	tests := []struct {
		name    string
		now     time.Time
		isToday bool
	}{
		{name: "common_year_feb_28", now: time.Date(2027, time.February, 28, 8, 0, 0, 0, time.UTC), isToday: true},
		{name: "common_year_mar_1", now: time.Date(2027, time.March, 1, 8, 0, 0, 0, time.UTC), isToday: false},
		{name: "leap_year_feb_28", now: time.Date(2028, time.February, 28, 8, 0, 0, 0, time.UTC), isToday: false},
		{name: "leap_year_feb_29", now: time.Date(2028, time.February, 29, 8, 0, 0, 0, time.UTC), isToday: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			birthdays := service.NewBirthdayService(f.repo, f.notifier, f.composer, f.logger, service.FixedClock(tt.now))
			today, err := birthdays.Today(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.isToday, len(today) == 1)
		})
	}
}
