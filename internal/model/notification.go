package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBirthday       NotificationType = "BIRTHDAY"
	NotificationTypeEventReminder  NotificationType = "EVENT_REMINDER"
	NotificationTypeDuesReminder   NotificationType = "DUES_REMINDER"
	NotificationTypeAnnouncement   NotificationType = "ANNOUNCEMENT"
	NotificationTypeScheduleChange NotificationType = "SCHEDULE_CHANGE"
)

type TargetType string

const (
	TargetAllMembers     TargetType = "ALL_MEMBERS"
	TargetAdminsOnly     TargetType = "ADMINS_ONLY"
	TargetSpecificMember TargetType = "SPECIFIC_MEMBER"
)

type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

type Notification struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string           `json:"title" gorm:"not null"`
	Message      string           `json:"message" gorm:"not null"`
	Type         NotificationType `json:"type" gorm:"index;not null"`
	TargetType   TargetType       `json:"target_type" gorm:"index;not null"`
	TargetID     *uuid.UUID       `json:"target_id,omitempty" gorm:"type:uuid;index"`
	Priority     Priority         `json:"priority" gorm:"not null;default:NORMAL"`
	IsRead       bool             `json:"is_read" gorm:"not null;default:false"`
	ReadAt       *time.Time       `json:"read_at,omitempty"`
	ScheduledFor *time.Time       `json:"scheduled_for,omitempty"`
	SentAt       *time.Time       `json:"sent_at,omitempty"`
	DedupKey     *string          `json:"-" gorm:"uniqueIndex"`
	CreatedAt    time.Time        `json:"created_at" gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }

// VisibleTo reports whether the caller is in the notification's audience.
func (n Notification) VisibleTo(id Identity) bool {
	switch n.TargetType {
	case TargetAllMembers:
		return true
	case TargetAdminsOnly:
		return IsAdmin(id)
	case TargetSpecificMember:
		return n.TargetID != nil && *n.TargetID == id.SubjectID()
	default:
		return false
	}
}

// MarkRead sets or clears the read state together with its timestamp.
func (n *Notification) MarkRead(read bool, now time.Time) {
	n.IsRead = read
	if read {
		n.ReadAt = &now
		return
	}
	n.ReadAt = nil
}
