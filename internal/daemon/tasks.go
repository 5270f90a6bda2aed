package daemon

import (
	"context"
	"log/slog"
	"time"
)

const (
	OverdueSweepName    = "overdue-sweep"
	BirthdayNoticesName = "birthday-notices"
	EventRemindersName  = "event-reminders"
)

type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

type BirthdayNotifier interface {
	SendNotices(ctx context.Context) (int, error)
}

type EventReminder interface {
	SendReminders(ctx context.Context, lead time.Duration) (int, error)
}

// OverdueSweepTask flips pending dues past their due date to OVERDUE.
func OverdueSweepTask(dues OverdueMarker, logger *slog.Logger, interval time.Duration) DaemonFunc {
	return Periodic(logger, interval, func(ctx context.Context) error {
		n, err := dues.MarkOverdue(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.InfoContext(ctx, "Marked dues overdue", "count", n)
		}
		return nil
	})
}

// BirthdayNoticesTask greets today's celebrants. Reruns on the same day are no-ops.
func BirthdayNoticesTask(birthdays BirthdayNotifier, logger *slog.Logger, interval time.Duration) DaemonFunc {
	return Periodic(logger, interval, func(ctx context.Context) error {
		_, err := birthdays.SendNotices(ctx)
		return err
	})
}

func EventRemindersTask(events EventReminder, lead time.Duration, logger *slog.Logger, interval time.Duration) DaemonFunc {
	return Periodic(logger, interval, func(ctx context.Context) error {
		n, err := events.SendReminders(ctx, lead)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.InfoContext(ctx, "Sent event reminders", "count", n)
		}
		return nil
	})
}
