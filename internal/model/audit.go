package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditEvent struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ActorID   uuid.UUID `json:"actor_id" gorm:"type:uuid;index"`
	ActorRole Role      `json:"actor_role"`
	Type      string    `json:"type" gorm:"index;not null"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditEvent) TableName() string { return "audit_events" }
