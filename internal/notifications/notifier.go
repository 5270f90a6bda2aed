package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ministry/internal/model"
	"ministry/internal/monitoring"
	"ministry/internal/repository"
)

type Store interface {
	CreateNotification(ctx context.Context, notification *model.Notification) error
}

// Notifier persists composed notifications into the feed.
type Notifier struct {
	logger  *slog.Logger
	store   Store
	metrics *monitoring.Metrics
	now     func() time.Time
}

func NewNotifier(logger *slog.Logger, store Store, metrics *monitoring.Metrics) *Notifier {
	return &Notifier{logger: logger, store: store, metrics: metrics, now: time.Now}
}

// Notify stores n. It reports false without error when a notification with
// the same dedup key already exists.
func (n *Notifier) Notify(ctx context.Context, notification *model.Notification) (bool, error) {
	sent := n.now().UTC()
	notification.SentAt = &sent
	if err := n.store.CreateNotification(ctx, notification); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && notification.DedupKey != nil {
			n.logger.DebugContext(ctx, "Notification already sent", "dedup_key", *notification.DedupKey)
			return false, nil
		}
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	n.metrics.RecordNotification(ctx, string(notification.Type))
	n.logger.InfoContext(ctx, "Notification created",
		"notification_id", notification.ID,
		"type", notification.Type,
		"target", notification.TargetType)
	return true, nil
}
