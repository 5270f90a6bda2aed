package api

import (
	"github.com/gofiber/fiber/v2"

	"ministry/internal/service"
)

func (h *Handler) ListEvents(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	year, err := queryInt(c, "year", h.clock.Today().Year())
	if err != nil {
		return err
	}

	events, err := h.services.Events.List(c.UserContext(), id, year, c.QueryBool("includeCancelled"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, events)
}

func (h *Handler) GetEvent(c *fiber.Ctx) error {
	eventID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.services.Events.Get(c.UserContext(), eventID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, event)
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.CreateEventRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	event, err := h.services.Events.Create(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, event)
}

func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	eventID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateEventRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	event, err := h.services.Events.Update(c.UserContext(), id, eventID, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, event)
}

func (h *Handler) CancelEvent(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	eventID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	event, err := h.services.Events.Cancel(c.UserContext(), id, eventID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, event)
}
