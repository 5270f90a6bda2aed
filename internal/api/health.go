package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by the repository's database health check.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	redis   *redis.Client
	version string
}

// NewHealthHandler builds the /health probe. redis may be nil when login
// rate limiting is not configured.
func NewHealthHandler(db Pinger, redis *redis.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, version: version}
}

func (h *HealthHandler) Healthy(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	checks := fiber.Map{"database": "ok"}
	healthy := true

	if err := h.db.HealthCheck(ctx); err != nil {
		slog.ErrorContext(ctx, "Database health check failed", "error", err)
		checks["database"] = "unavailable"
		healthy = false
	}
	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "Redis health check failed", "error", err)
			checks["redis"] = "unavailable"
			healthy = false
		}
	}

	status, code := "healthy", fiber.StatusOK
	if !healthy {
		status, code = "unhealthy", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
