package api

import (
	"github.com/gofiber/fiber/v2"

	"ministry/internal/service"
)

func (h *Handler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.services.Groups.List(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, groups)
}

func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.CreateGroupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	group, err := h.services.Groups.Create(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, group)
}

func (h *Handler) DeleteGroup(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	groupID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.services.Groups.Delete(c.UserContext(), id, groupID); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, nil)
}

func (h *Handler) AddGroupMember(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	groupID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.AddGroupMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	group, err := h.services.Groups.AddMember(c.UserContext(), id, groupID, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, group)
}

func (h *Handler) RemoveGroupMember(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	groupID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	memberID, err := paramUUID(c, "memberId")
	if err != nil {
		return err
	}

	if err := h.services.Groups.RemoveMember(c.UserContext(), id, groupID, memberID); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, nil)
}

func (h *Handler) MyGroup(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	group, err := h.services.Groups.MyGroup(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, group)
}

func (h *Handler) MemberGroups(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	groups, err := h.services.Groups.AllForMember(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, groups)
}
