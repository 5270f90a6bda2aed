package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/session"
)

const identityKey = "identity"

// IdentityResolver turns a session token into the identity it names.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (model.Identity, error)
}

// AdminChecker confirms the parish admin relation, e.g. through OpenFGA.
type AdminChecker interface {
	IsParishAdmin(ctx context.Context, adminID uuid.UUID) (bool, error)
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	return strings.TrimSpace(token), ok && token != ""
}

// Authenticated accepts a bearer token or the session cookie and stores the
// resolved identity in the request locals.
func Authenticated(resolver IdentityResolver, sessions *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok && c.Get(fiber.HeaderAuthorization) != "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}
		if !ok && sessions != nil {
			var err error
			token, err = sessions.Token(c)
			if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
				return err
			}
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		id, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// RequireAdmin rejects non-admin identities. When checker is set the admin
// relation is also confirmed there.
func RequireAdmin(checker AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		admin, ok := id.(model.AdminIdentity)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}

		if checker != nil {
			allowed, err := checker.IsParishAdmin(c.UserContext(), admin.ID)
			if err != nil {
				slog.ErrorContext(c.UserContext(), "Admin relation check failed", "admin_id", admin.ID, "error", err)
				return fiber.NewError(fiber.StatusServiceUnavailable, "authorization unavailable")
			}
			if !allowed {
				return fiber.NewError(fiber.StatusForbidden, "admin access required")
			}
		}
		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by Authenticated.
func CurrentIdentity(c *fiber.Ctx) (model.Identity, bool) {
	id, ok := c.Locals(identityKey).(model.Identity)
	return id, ok && id != nil
}
