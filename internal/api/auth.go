package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/service"
)

const oauthStateCookie = "oauth_state"

func (h *Handler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.services.Auth.Login(c.UserContext(), req, c.IP())
	if err != nil {
		return err
	}
	if err := h.sessions.Save(c, result.Token); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, result)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Destroy(c); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, nil)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, model.ViewIdentity(id))
}

func (h *Handler) RegistrationStatus(c *fiber.Ctx) error {
	open, err := h.services.Auth.RegistrationOpen(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"open": open})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	admin, err := h.services.Auth.RegisterFirstAdmin(c.UserContext(), req)
	if err != nil {
		return err
	}
	h.logger.InfoContext(c.UserContext(), "First admin registered", "admin_id", admin.ID, "ip", c.IP())
	return success(c, fiber.StatusCreated, model.ViewIdentity(admin.Identity()))
}

// GoogleLogin redirects to the Google consent screen with a one-time state.
func (h *Handler) GoogleLogin(c *fiber.Ctx) error {
	state := uuid.NewString()
	url, err := h.services.Google.AuthCodeURL(state)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(url, fiber.StatusFound)
}

func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Cookies(oauthStateCookie)
	c.ClearCookie(oauthStateCookie)
	if state == "" || state != c.Query("state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid oauth state")
	}

	result, err := h.services.Google.Callback(c.UserContext(), c.Query("code"))
	if err != nil {
		return err
	}
	if err := h.sessions.Save(c, result.Token); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, result)
}
