package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventStatus string

const (
	EventStatusScheduled EventStatus = "SCHEDULED"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

type MinistryEvent struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Title      string      `json:"title" gorm:"not null"`
	Date       Date        `json:"date" gorm:"index;not null"`
	Time       string      `json:"time" gorm:"not null"`
	Conductor  string      `json:"conductor"`
	Purpose    string      `json:"purpose"`
	Location   string      `json:"location"`
	Status     EventStatus `json:"status" gorm:"index;not null;default:SCHEDULED"`
	Year       int         `json:"year" gorm:"index"`
	Recurrence string      `json:"recurrence,omitempty"`
	CreatedBy  uuid.UUID   `json:"created_by" gorm:"type:uuid"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (MinistryEvent) TableName() string { return "ministry_events" }

// BeforeSave keeps the year column in step with the event date.
func (e *MinistryEvent) BeforeSave(tx *gorm.DB) error {
	e.Year = e.Date.Year()
	return nil
}

// StartsAt combines the event date and HH:MM time in loc.
func (e MinistryEvent) StartsAt(loc *time.Location) time.Time {
	hour, minute := 0, 0
	if t, err := time.Parse("15:04", e.Time); err == nil {
		hour, minute = t.Hour(), t.Minute()
	}
	return time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), hour, minute, 0, 0, loc)
}

// ScheduleStatus is the lower-case state shown on member schedules.
func (e MinistryEvent) ScheduleStatus(today Date) string {
	switch {
	case e.Status == EventStatusCancelled:
		return "cancelled"
	case e.Status == EventStatusCompleted || e.Date.Before(today):
		return "completed"
	default:
		return "upcoming"
	}
}
