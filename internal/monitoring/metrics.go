package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the ministry counters. A nil *Metrics records nothing.
type Metrics struct {
	logins           metric.Int64Counter
	attendanceMarked metric.Int64Counter
	duesPaid         metric.Int64Counter
	notifications    metric.Int64Counter
	httpRequests     metric.Int64Counter
	httpDuration     metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.logins, err = meter.Int64Counter("ministry_logins_total",
		metric.WithDescription("Login attempts by role and outcome"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create logins counter: %w", err)
	}
	if m.attendanceMarked, err = meter.Int64Counter("ministry_attendance_marked_total",
		metric.WithDescription("Attendance records written"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create attendance counter: %w", err)
	}
	if m.duesPaid, err = meter.Int64Counter("ministry_dues_paid_total",
		metric.WithDescription("Dues settled by payment method"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create dues counter: %w", err)
	}
	if m.notifications, err = meter.Int64Counter("ministry_notifications_created_total",
		metric.WithDescription("Notifications created by type"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create notifications counter: %w", err)
	}
	if m.httpRequests, err = meter.Int64Counter("ministry_http_requests_total",
		metric.WithDescription("HTTP requests by route and status"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}
	if m.httpDuration, err = meter.Float64Histogram("ministry_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	return &m, nil
}

func (m *Metrics) RecordLogin(ctx context.Context, role string, success bool) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.Bool("success", success),
	))
}

func (m *Metrics) RecordAttendance(ctx context.Context, eventType string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.attendanceMarked.Add(ctx, int64(n), metric.WithAttributes(attribute.String("event_type", eventType)))
}

func (m *Metrics) RecordDuesPaid(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.duesPaid.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

func (m *Metrics) RecordNotification(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(attribute.String("type", kind)))
}

func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpDuration.Record(ctx, seconds, attrs)
}
