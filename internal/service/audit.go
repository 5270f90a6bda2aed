package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"ministry/internal/model"
)

type AuditStore interface {
	CreateAuditEvent(ctx context.Context, event *model.AuditEvent) error
}

// AuditService keeps a trail of admin actions. Failures are logged and never
// fail the action itself.
type AuditService struct {
	store  AuditStore
	logger *slog.Logger
	clock  Clock
}

func NewAuditService(store AuditStore, logger *slog.Logger, clock Clock) *AuditService {
	return &AuditService{store: store, logger: logger, clock: clock}
}

func (s *AuditService) Record(ctx context.Context, actor model.Identity, eventType string, data any) {
	if s == nil {
		return
	}

	event := model.AuditEvent{
		Type:      eventType,
		CreatedAt: s.clock.Now(),
	}
	if actor != nil {
		event.ActorID = actor.SubjectID()
		event.ActorRole = actor.Role()
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to encode audit data", "type", eventType, "error", err)
		} else {
			event.Data = string(raw)
		}
	}

	if err := s.store.CreateAuditEvent(ctx, &event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record audit event", "type", eventType, "error", err)
	}
}
