package api

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) MemberDuties(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	year, month, err := h.monthQuery(c)
	if err != nil {
		return err
	}

	duties, err := h.services.Schedule.Duties(c.UserContext(), id, year, month)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, duties)
}

func (h *Handler) MemberCalendar(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	year, month, err := h.monthQuery(c)
	if err != nil {
		return err
	}

	cells, err := h.services.Schedule.Calendar(c.UserContext(), id, year, month)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, cells)
}

func (h *Handler) MemberSchedule(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	items, err := h.services.Schedule.Schedule(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, items)
}

func (h *Handler) Birthdays(c *fiber.Ctx) error {
	birthdays, err := h.services.Birthdays.List(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, birthdays)
}

func (h *Handler) AdminDashboard(c *fiber.Ctx) error {
	dashboard, err := h.services.Dashboard.Admin(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, dashboard)
}
