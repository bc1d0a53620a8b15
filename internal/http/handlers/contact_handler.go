package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"campusbay/internal/repos"
)

// ContactHandler looks other students up by name so buyers can reach a
// seller directly. Signed-in users only; password hashes never leave the
// repo layer.
type ContactHandler struct {
	Users *repos.UserRepo
}

func (h *ContactHandler) Search(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return badRequest(c, "Name is required for search")
	}
	users, err := h.Users.SearchByName(name)
	if err != nil {
		return fail(c, "contacts.search.fail", err)
	}
	if len(users) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No users found"})
	}
	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		out = append(out, fiber.Map{
			"id":         u.ID,
			"name":       u.Name,
			"email":      u.Email,
			"department": u.Department,
			"year":       u.Year,
		})
	}
	return c.JSON(out)
}
