package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendanceRate(t *testing.T) {
	assert.Equal(t, 0, AttendanceRate(0, 0, 0))
	assert.Equal(t, 0, AttendanceRate(3, 1, 0))
	assert.Equal(t, 70, AttendanceRate(5, 2, 10))
	assert.Equal(t, 67, AttendanceRate(2, 0, 3))
	assert.Equal(t, 33, AttendanceRate(1, 0, 3))
	assert.Equal(t, 100, AttendanceRate(4, 1, 5))
}

func TestSummarizeAttendance(t *testing.T) {
	records := []AttendanceRecord{
		{Status: AttendanceStatusPresent},
		{Status: AttendanceStatusPresent},
		{Status: AttendanceStatusLate},
		{Status: AttendanceStatusAbsent},
		{Status: AttendanceStatusExcused},
	}

	summary := SummarizeAttendance(records, 8)

	assert.Equal(t, AttendanceSummary{
		Present:  2,
		Late:     1,
		Absent:   1,
		Excused:  1,
		Unmarked: 3,
		Total:    8,
		Rate:     38,
	}, summary)
}

func TestSummarizeAttendance_NoActiveMembers(t *testing.T) {
	summary := SummarizeAttendance([]AttendanceRecord{{Status: AttendanceStatusPresent}}, 0)

	assert.Equal(t, 0, summary.Rate)
	assert.Equal(t, 0, summary.Unmarked)
	assert.Equal(t, 1, summary.Present)
}

func TestMonthlyStatus(t *testing.T) {
	assert.Equal(t, AttendanceStatusPresent, MonthlyStatus(true, false))
	assert.Equal(t, AttendanceStatusPresent, MonthlyStatus(true, true))
	assert.Equal(t, AttendanceStatusExcused, MonthlyStatus(false, true))
	assert.Equal(t, AttendanceStatusAbsent, MonthlyStatus(false, false))
}

func TestEventTypeLabel(t *testing.T) {
	assert.Equal(t, "Sunday Mass", EventTypeSundayMass.Label())
	assert.Equal(t, "Monthly Meeting", EventTypeMonthlyMeeting.Label())
	assert.True(t, EventTypeDailyMass.IsMass())
	assert.False(t, EventTypeRetreat.IsMass())
	assert.False(t, EventType("PICNIC").Valid())
}
