package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"ministry/internal/calendar"
	"ministry/internal/model"
)

// DisplayDateLayout is how dates read inside notification text.
const DisplayDateLayout = "January 2, 2006"

// Composer builds notification records. It never stores them.
type Composer struct {
	currency string
}

func NewComposer(currencySymbol string) Composer {
	return Composer{currency: currencySymbol}
}

func formatDate(d model.Date) string {
	return d.Format(DisplayDateLayout)
}

func dedup(parts ...any) *string {
	key := fmt.Sprint(parts...)
	return &key
}

// Birthday greets a member or admin on their day. One per person per day.
func (c Composer) Birthday(personID uuid.UUID, name string, day model.Date) model.Notification {
	return model.Notification{
		Title:      "Happy birthday!",
		Message:    fmt.Sprintf("Birthday of %s", name),
		Type:       model.NotificationTypeBirthday,
		TargetType: model.TargetAllMembers,
		Priority:   model.PriorityNormal,
		DedupKey:   dedup("birthday:", personID, ":", day),
	}
}

// EventReminder announces an upcoming occurrence. One per event per date.
func (c Composer) EventReminder(e model.MinistryEvent, on model.Date) model.Notification {
	return model.Notification{
		Title:      fmt.Sprintf("Reminder: %s", e.Title),
		Message:    fmt.Sprintf("%s on %s at %s", e.Title, formatDate(on), calendar.FormatClock(e.Time)),
		Type:       model.NotificationTypeEventReminder,
		TargetType: model.TargetAllMembers,
		Priority:   model.PriorityHigh,
		DedupKey:   dedup("event-reminder:", e.ID, ":", on),
	}
}

func (c Composer) DuesReminder(memberID uuid.UUID, pending model.Amount) model.Notification {
	id := memberID
	return model.Notification{
		Title:      "Dues reminder",
		Message:    fmt.Sprintf("You have pending dues of %s%s", c.currency, pending),
		Type:       model.NotificationTypeDuesReminder,
		TargetType: model.TargetSpecificMember,
		TargetID:   &id,
		Priority:   model.PriorityNormal,
	}
}

func (c Composer) Announcement(title, message string, target model.TargetType, targetID *uuid.UUID, priority model.Priority) model.Notification {
	if priority == "" {
		priority = model.PriorityNormal
	}
	if target != model.TargetSpecificMember {
		targetID = nil
	}
	return model.Notification{
		Title:      title,
		Message:    message,
		Type:       model.NotificationTypeAnnouncement,
		TargetType: target,
		TargetID:   targetID,
		Priority:   priority,
	}
}

func (c Composer) NewEvent(e model.MinistryEvent) model.Notification {
	return c.Announcement(
		e.Title,
		fmt.Sprintf("New event: %s on %s", e.Title, formatDate(e.Date)),
		model.TargetAllMembers, nil, model.PriorityNormal,
	)
}

// ScheduleChange tells members an event moved. previous holds the old date and time.
func (c Composer) ScheduleChange(e model.MinistryEvent, previous model.MinistryEvent) model.Notification {
	return model.Notification{
		Title: fmt.Sprintf("Schedule change: %s", e.Title),
		Message: fmt.Sprintf("%s moved from %s at %s to %s at %s", e.Title,
			formatDate(previous.Date), calendar.FormatClock(previous.Time),
			formatDate(e.Date), calendar.FormatClock(e.Time)),
		Type:       model.NotificationTypeScheduleChange,
		TargetType: model.TargetAllMembers,
		Priority:   model.PriorityHigh,
	}
}
