package api

import (
	"github.com/gofiber/fiber/v2"

	"ministry/internal/model"
	"ministry/internal/service"
)

func (h *Handler) ListMembers(c *fiber.Ctx) error {
	members, err := h.services.Members.List(c.UserContext(), model.MemberStatus(upper(c.Query("status"))))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, members)
}

func (h *Handler) CreateMember(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.CreateMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	member, err := h.services.Members.Create(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, member)
}

func (h *Handler) GetMember(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	memberID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	member, err := h.services.Members.Get(c.UserContext(), id, memberID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, member)
}

func (h *Handler) UpdateMember(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	memberID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	member, err := h.services.Members.Update(c.UserContext(), id, memberID, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, member)
}

func (h *Handler) DeactivateMember(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	memberID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.services.Members.Deactivate(c.UserContext(), id, memberID); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, nil)
}

func (h *Handler) UploadMemberPhoto(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	memberID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	header, err := c.FormFile("photo")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "photo file is required")
	}
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.logger.Error("Error closing uploaded photo", "error", err)
		}
	}()

	member, err := h.services.Members.UploadPhoto(c.UserContext(), id, memberID, header.Filename, header.Size, file)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, member)
}

func (h *Handler) MemberPhoto(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	memberID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	content, meta, err := h.services.Members.Photo(c.UserContext(), id, memberID)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, meta.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	// fasthttp closes the stream once it has been sent
	return c.SendStream(content, int(meta.Size))
}

func (h *Handler) MemberProfile(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	profile, err := h.services.Members.Profile(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, profile)
}
