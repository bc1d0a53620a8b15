package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "campusbay/internal/log"
	"campusbay/internal/services"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AttachUser resolves the bearer token when present; requests without one
// pass through anonymously.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := bearerToken(c); tok != "" {
			if u, err := auth.UserFromToken(tok); err == nil && u != nil {
				c.Locals("user", u)
				c.Locals("userID", u.ID)
			}
		}
		return c.Next()
	}
}

// RequireUser rejects requests without a valid bearer token.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}
		u, err := auth.UserFromToken(tok)
		if err != nil || u == nil {
			applog.Security(c, "auth.token.invalid", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		return c.Next()
	}
}

// AdminOnly must run after RequireUser.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil || u.Role != "ADMIN" {
			applog.Security(c, "access.denied.admin", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
		}
		return c.Next()
	}
}
