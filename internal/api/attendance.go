package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"ministry/internal/model"
	"ministry/internal/service"
)

func (h *Handler) MarkAttendance(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.MarkAttendanceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sheet, err := h.services.Attendance.Mark(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, sheet)
}

func (h *Handler) ListAttendance(c *fiber.Ctx) error {
	filter := service.AttendanceFilter{EventType: model.EventType(upper(c.Query("eventType")))}
	if raw := c.Query("date"); raw != "" {
		date, err := model.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", service.ErrInvalidInput)
		}
		filter.Date = date
	}
	if raw := c.Query("serviceTime"); raw != "" {
		st := model.ServiceTime(upper(raw))
		filter.ServiceTime = &st
	}

	sheet, err := h.services.Attendance.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, sheet)
}

func (h *Handler) MonthlyAttendance(c *fiber.Ctx) error {
	year, month, err := h.monthQuery(c)
	if err != nil {
		return err
	}
	rows, err := h.services.Attendance.Monthly(c.UserContext(), year, month)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, rows)
}

func (h *Handler) SaveMonthlyAttendance(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.SaveMonthlyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rows, err := h.services.Attendance.SaveMonthly(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, rows)
}

func (h *Handler) ListAssignments(c *fiber.Ctx) error {
	year, month, err := h.monthQuery(c)
	if err != nil {
		return err
	}
	slots, err := h.services.Assignments.List(c.UserContext(), year, month)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, slots)
}

func (h *Handler) AssignSlot(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.AssignRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	slot, err := h.services.Assignments.Assign(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, slot)
}

func (h *Handler) RemoveAssignment(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	memberID, err := paramUUID(c, "memberId")
	if err != nil {
		return err
	}

	if err := h.services.Assignments.RemoveMember(c.UserContext(), id, c.Params("key"), memberID); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, nil)
}

func (h *Handler) ToggleAssignmentAttendance(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.ToggleAttendanceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	record, err := h.services.Assignments.ToggleAttendance(c.UserContext(), id, c.Params("key"), req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, record)
}
