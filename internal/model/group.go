package model

import (
	"time"

	"github.com/google/uuid"
)

// ServiceGroup is a Sunday service team. Membership is held on Member.GroupID,
// so a member belongs to at most one group.
type ServiceGroup struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string      `json:"name" gorm:"uniqueIndex;not null"`
	ServiceTime ServiceTime `json:"service_time"`
	Members     []Member    `json:"members" gorm:"foreignKey:GroupID"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (ServiceGroup) TableName() string { return "service_groups" }
