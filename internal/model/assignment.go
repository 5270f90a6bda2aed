package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekdays served by daily mass duty rotations.
var DutyWeekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

func ParseDutyWeekday(s string) (time.Weekday, error) {
	for _, d := range DutyWeekdays {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid duty day %q", s)
}

// DutyAssignment places a member on a weekday mass slot for one month.
type DutyAssignment struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Weekday     string      `json:"day" gorm:"not null;uniqueIndex:idx_duty_slot_member"`
	ServiceTime ServiceTime `json:"service_time" gorm:"not null;uniqueIndex:idx_duty_slot_member"`
	Month       int         `json:"month" gorm:"not null;uniqueIndex:idx_duty_slot_member"`
	Year        int         `json:"year" gorm:"not null;uniqueIndex:idx_duty_slot_member"`
	MemberID    uuid.UUID   `json:"member_id" gorm:"type:uuid;not null;uniqueIndex:idx_duty_slot_member"`
	Member      *Member     `json:"member,omitempty" gorm:"foreignKey:MemberID"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (DutyAssignment) TableName() string { return "duty_assignments" }

func (a DutyAssignment) Slot() DutySlot {
	day, _ := ParseDutyWeekday(a.Weekday)
	return DutySlot{Weekday: day, ServiceTime: a.ServiceTime, Month: time.Month(a.Month), Year: a.Year}
}

type DutySlot struct {
	Weekday     time.Weekday
	ServiceTime ServiceTime
	Month       time.Month
	Year        int
}

var ErrInvalidSlotKey = errors.New("invalid assignment key")

// Key renders the slot as day-time-month-year, for example "monday-AM-3-2026".
func (s DutySlot) Key() string {
	return fmt.Sprintf("%s-%s-%d-%d", strings.ToLower(s.Weekday.String()), s.ServiceTime, int(s.Month), s.Year)
}

func ParseSlotKey(key string) (DutySlot, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 4 {
		return DutySlot{}, ErrInvalidSlotKey
	}
	day, err := ParseDutyWeekday(parts[0])
	if err != nil {
		return DutySlot{}, ErrInvalidSlotKey
	}
	st := ServiceTime(strings.ToUpper(parts[1]))
	if st != ServiceTimeAM && st != ServiceTimePM {
		return DutySlot{}, ErrInvalidSlotKey
	}
	month, err := strconv.Atoi(parts[2])
	if err != nil || month < 1 || month > 12 {
		return DutySlot{}, ErrInvalidSlotKey
	}
	year, err := strconv.Atoi(parts[3])
	if err != nil || year < 1 {
		return DutySlot{}, ErrInvalidSlotKey
	}
	return DutySlot{Weekday: day, ServiceTime: st, Month: time.Month(month), Year: year}, nil
}

// Dates lists every day of the slot's month that falls on its weekday.
func (s DutySlot) Dates() []Date {
	var dates []Date
	d := NewDate(s.Year, s.Month, 1)
	for d.Month() == s.Month {
		if d.Weekday() == s.Weekday {
			dates = append(dates, d)
		}
		d = d.AddDays(1)
	}
	return dates
}

// Covers reports whether date is one of the slot's service days.
func (s DutySlot) Covers(date Date) bool {
	return date.Year() == s.Year && date.Month() == s.Month && date.Weekday() == s.Weekday
}
