package api

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ministry/internal/middleware"
	"ministry/internal/model"
	"ministry/internal/service"
	"ministry/internal/session"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Auth          *service.AuthService
	Google        *service.GoogleAuth
	Members       *service.MemberService
	Attendance    *service.AttendanceService
	Assignments   *service.AssignmentService
	Groups        *service.GroupService
	Dues          *service.DuesService
	Payments      *service.PaymentService
	Events        *service.EventService
	Notifications *service.NotificationService
	Birthdays     *service.BirthdayService
	Schedule      *service.ScheduleService
	Dashboard     *service.DashboardService
}

type Handler struct {
	services Services
	sessions *session.Store
	logger   *slog.Logger
	clock    service.Clock
}

func NewHandler(services Services, sessions *session.Store, logger *slog.Logger, clock service.Clock) *Handler {
	return &Handler{services: services, sessions: sessions, logger: logger, clock: clock}
}

func success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func identity(c *fiber.Ctx) (model.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return nil, service.ErrUnauthenticated
	}
	return id, nil
}

func bind(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return fmt.Errorf("%w: malformed request body", service.ErrInvalidInput)
	}
	return nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a valid id", service.ErrInvalidInput, name)
	}
	return id, nil
}

func queryUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a valid id", service.ErrInvalidInput, name)
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", service.ErrInvalidInput, name)
	}
	return n, nil
}

// monthQuery reads month and year, defaulting to the current month.
func (h *Handler) monthQuery(c *fiber.Ctx) (year, month int, err error) {
	today := h.clock.Today()
	if month, err = queryInt(c, "month", int(today.Month())); err != nil {
		return 0, 0, err
	}
	if year, err = queryInt(c, "year", today.Year()); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
