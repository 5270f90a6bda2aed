package calendar

import (
	"fmt"
	"time"

	"ministry/internal/model"
)

// FormatClock renders an HH:MM value as a 12 hour clock ("7:00 PM").
// Unparseable values are returned unchanged.
func FormatClock(hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}

// AttendanceDuty describes an attendance record on the duty calendar.
func AttendanceDuty(r model.AttendanceRecord) string {
	label := r.EventType.Label()
	if r.EventType.IsMass() {
		st := r.ServiceTime
		if st == model.ServiceTimeNone {
			st = model.ServiceTimeAM
		}
		return fmt.Sprintf("%s %s", label, st)
	}
	return label
}

// AssignmentDuty describes a weekday daily mass slot.
func AssignmentDuty(a model.DutyAssignment) string {
	return fmt.Sprintf("%s %s", model.EventTypeDailyMass.Label(), a.ServiceTime)
}

func EventDuty(e model.MinistryEvent) string {
	return fmt.Sprintf("%s - %s", e.Title, FormatClock(e.Time))
}
