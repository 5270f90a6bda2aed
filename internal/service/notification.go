package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/notifications"
	"ministry/internal/repository"
)

// FeedLimit is how many notifications the feed returns.
const FeedLimit = 50

type SetReadRequest struct {
	IsRead *bool `json:"is_read" validate:"required"`
}

type AnnounceRequest struct {
	Title      string           `json:"title" validate:"required,max=200"`
	Message    string           `json:"message" validate:"required,max=2000"`
	TargetType model.TargetType `json:"target_type" validate:"required,oneof=ALL_MEMBERS ADMINS_ONLY SPECIFIC_MEMBER"`
	TargetID   *uuid.UUID       `json:"target_id"`
	Priority   model.Priority   `json:"priority" validate:"omitempty,oneof=NORMAL HIGH"`
}

type NotificationService struct {
	repo      repository.Repository
	validator Validator
	notifier  *notifications.Notifier
	composer  notifications.Composer
	audit     *AuditService
	clock     Clock
	logger    *slog.Logger
}

func NewNotificationService(repo repository.Repository, v Validator, notifier *notifications.Notifier,
	composer notifications.Composer, audit *AuditService, logger *slog.Logger, clock Clock) *NotificationService {
	return &NotificationService{
		repo:      repo,
		validator: v,
		notifier:  notifier,
		composer:  composer,
		audit:     audit,
		clock:     clock,
		logger:    logger,
	}
}

func (s *NotificationService) List(ctx context.Context, caller model.Identity) ([]model.Notification, error) {
	items, err := s.repo.ListNotifications(ctx, repository.AudienceOf(caller), FeedLimit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Notification{}
	}
	return items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, caller model.Identity) (int64, error) {
	return s.repo.CountUnreadNotifications(ctx, repository.AudienceOf(caller))
}

// SetRead flips the read flag. Notifications outside the caller's audience
// are reported as missing.
func (s *NotificationService) SetRead(ctx context.Context, caller model.Identity, id uuid.UUID, req SetReadRequest) (model.Notification, error) {
	if err := validate(s.validator, req); err != nil {
		return model.Notification{}, err
	}
	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return model.Notification{}, err
	}
	if !n.VisibleTo(caller) {
		return model.Notification{}, repository.ErrNotificationNotFound
	}
	n.MarkRead(*req.IsRead, s.clock.Now())
	if err := s.repo.UpdateNotification(ctx, &n); err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, caller model.Identity) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, repository.AudienceOf(caller), s.clock.Now())
}

// Announce posts an admin announcement to the chosen audience.
func (s *NotificationService) Announce(ctx context.Context, actor model.Identity, req AnnounceRequest) (model.Notification, error) {
	if err := validate(s.validator, req); err != nil {
		return model.Notification{}, err
	}
	if req.TargetType == model.TargetSpecificMember {
		if req.TargetID == nil {
			return model.Notification{}, invalid("target_id is required for SPECIFIC_MEMBER")
		}
		if _, err := s.repo.GetMemberByID(ctx, *req.TargetID); err != nil {
			if errors.Is(err, repository.ErrMemberNotFound) {
				return model.Notification{}, invalid("target member does not exist")
			}
			return model.Notification{}, err
		}
	}

	n := s.composer.Announcement(strings.TrimSpace(req.Title), strings.TrimSpace(req.Message), req.TargetType, req.TargetID, req.Priority)
	if _, err := s.notifier.Notify(ctx, &n); err != nil {
		return model.Notification{}, err
	}
	s.audit.Record(ctx, actor, "notification.announced", map[string]any{"notification_id": n.ID, "target_type": n.TargetType})
	return n, nil
}
