package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one line per request once the handler chain has run.
// Chain errors are rendered here so the logged status is the one sent.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"ip", c.IP(),
		}
		if rid, ok := c.Locals("requestid").(string); ok {
			attrs = append(attrs, "request_id", rid)
		}
		if id, ok := CurrentIdentity(c); ok {
			attrs = append(attrs, "subject", id.SubjectID(), "role", id.Role())
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.ErrorContext(c.UserContext(), "Request", attrs...)
		case status >= fiber.StatusBadRequest:
			logger.WarnContext(c.UserContext(), "Request", attrs...)
		default:
			logger.InfoContext(c.UserContext(), "Request", attrs...)
		}
		return nil
	}
}
