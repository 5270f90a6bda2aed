package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"ministry/internal/calendar"
	"ministry/internal/model"
	"ministry/internal/repository"
	"ministry/internal/service"
	"ministry/internal/session"
	"ministry/internal/storage"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{repository.ErrMemberNotFound, fiber.StatusNotFound},
	{repository.ErrAdminNotFound, fiber.StatusNotFound},
	{repository.ErrAttendanceNotFound, fiber.StatusNotFound},
	{repository.ErrFinancialRecordNotFound, fiber.StatusNotFound},
	{repository.ErrEventNotFound, fiber.StatusNotFound},
	{repository.ErrNotificationNotFound, fiber.StatusNotFound},
	{repository.ErrGroupNotFound, fiber.StatusNotFound},
	{repository.ErrAssignmentNotFound, fiber.StatusNotFound},
	{storage.ErrObjectNotFound, fiber.StatusNotFound},
	{service.ErrPhotoNotFound, fiber.StatusNotFound},
	{service.ErrNoGroup, fiber.StatusNotFound},
	{service.ErrNotInGroup, fiber.StatusNotFound},
	{service.ErrNotConfigured, fiber.StatusNotFound},

	{service.ErrInvalidInput, fiber.StatusBadRequest},
	{service.ErrInvalidSignature, fiber.StatusBadRequest},
	{model.ErrPaymentDetailsRequired, fiber.StatusBadRequest},
	{model.ErrInvalidSlotKey, fiber.StatusBadRequest},
	{calendar.ErrInvalidRecurrence, fiber.StatusBadRequest},

	{repository.ErrDuplicate, fiber.StatusConflict},
	{model.ErrTerminalDueStatus, fiber.StatusConflict},

	{service.ErrForbidden, fiber.StatusForbidden},
	{service.ErrRegistrationClosed, fiber.StatusForbidden},

	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrUnauthenticated, fiber.StatusUnauthorized},
	{session.ErrInvalidToken, fiber.StatusUnauthorized},
	{session.ErrExpiredToken, fiber.StatusUnauthorized},

	{service.ErrTooManyAttempts, fiber.StatusTooManyRequests},
}

// errorStatus maps an error to the HTTP status and the message shown to the
// client. Unknown errors are internal and their text is not exposed.
func errorStatus(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status, err.Error()
		}
	}
	return fiber.StatusInternalServerError, "internal server error"
}

// ErrorHandler renders every handler error as {"status":"error","error":msg}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := errorStatus(err)
		if status >= fiber.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "Request failed",
				"method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(status).JSON(fiber.Map{
			"status": "error",
			"error":  message,
		})
	}
}
