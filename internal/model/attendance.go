package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeSundayMass     EventType = "SUNDAY_MASS"
	EventTypeDailyMass      EventType = "DAILY_MASS"
	EventTypeMonthlyMeeting EventType = "MONTHLY_MEETING"
	EventTypeSpecialEvent   EventType = "SPECIAL_EVENT"
	EventTypeTraining       EventType = "TRAINING"
	EventTypeRetreat        EventType = "RETREAT"
)

var EventTypes = []EventType{
	EventTypeSundayMass,
	EventTypeDailyMass,
	EventTypeMonthlyMeeting,
	EventTypeSpecialEvent,
	EventTypeTraining,
	EventTypeRetreat,
}

func (t EventType) Valid() bool {
	for _, v := range EventTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Label is the human readable name used in duty listings.
func (t EventType) Label() string {
	switch t {
	case EventTypeSundayMass:
		return "Sunday Mass"
	case EventTypeDailyMass:
		return "Daily Mass"
	case EventTypeMonthlyMeeting:
		return "Monthly Meeting"
	case EventTypeSpecialEvent:
		return "Special Event"
	case EventTypeTraining:
		return "Training"
	case EventTypeRetreat:
		return "Retreat"
	default:
		return string(t)
	}
}

// IsMass reports whether the event is a mass served in AM/PM slots.
func (t EventType) IsMass() bool {
	return t == EventTypeSundayMass || t == EventTypeDailyMass
}

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
)

type ServiceTime string

const (
	ServiceTimeNone ServiceTime = ""
	ServiceTimeAM   ServiceTime = "AM"
	ServiceTimePM   ServiceTime = "PM"
)

type AttendanceRecord struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	MemberID    uuid.UUID        `json:"member_id" gorm:"type:uuid;index;not null"`
	Member      *Member          `json:"member,omitempty" gorm:"foreignKey:MemberID"`
	EventType   EventType        `json:"event_type" gorm:"index;not null"`
	EventDate   Date             `json:"event_date" gorm:"index;not null"`
	ServiceTime ServiceTime      `json:"service_time"`
	Status      AttendanceStatus `json:"status" gorm:"not null"`
	Notes       string           `json:"notes"`
	RecordedBy  *uuid.UUID       `json:"recorded_by,omitempty" gorm:"type:uuid"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (AttendanceRecord) TableName() string { return "attendance_records" }

type AttendanceSummary struct {
	Present  int `json:"present"`
	Late     int `json:"late"`
	Absent   int `json:"absent"`
	Excused  int `json:"excused"`
	Unmarked int `json:"unmarked"`
	Total    int `json:"total"`
	Rate     int `json:"rate"`
}

// SummarizeAttendance tallies the records of one occasion against the number of active members.
func SummarizeAttendance(records []AttendanceRecord, activeMembers int) AttendanceSummary {
	summary := AttendanceSummary{Total: activeMembers}
	for _, r := range records {
		switch r.Status {
		case AttendanceStatusPresent:
			summary.Present++
		case AttendanceStatusLate:
			summary.Late++
		case AttendanceStatusAbsent:
			summary.Absent++
		case AttendanceStatusExcused:
			summary.Excused++
		}
	}
	summary.Unmarked = max(activeMembers-len(records), 0)
	summary.Rate = AttendanceRate(summary.Present, summary.Late, activeMembers)
	return summary
}

// AttendanceRate is the rounded percentage of present or late members. It is 0 when total is 0.
func AttendanceRate(present, late, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(present+late) / float64(total) * 100))
}

// MonthlyStatus resolves the checkbox pair of the monthly meeting sheet.
func MonthlyStatus(present, excused bool) AttendanceStatus {
	switch {
	case present:
		return AttendanceStatusPresent
	case excused:
		return AttendanceStatusExcused
	default:
		return AttendanceStatusAbsent
	}
}
