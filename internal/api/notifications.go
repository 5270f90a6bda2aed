package api

import (
	"github.com/gofiber/fiber/v2"

	"ministry/internal/service"
)

func (h *Handler) ListNotifications(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	feed, err := h.services.Notifications.List(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, feed)
}

func (h *Handler) UnreadCount(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	count, err := h.services.Notifications.UnreadCount(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"count": count})
}

func (h *Handler) SetNotificationRead(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	notificationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.SetReadRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	notification, err := h.services.Notifications.SetRead(c.UserContext(), id, notificationID, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, notification)
}

func (h *Handler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	updated, err := h.services.Notifications.MarkAllRead(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"updated": updated})
}

func (h *Handler) Announce(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.AnnounceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	notification, err := h.services.Notifications.Announce(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, notification)
}
