package handlers

import (
	"github.com/gofiber/fiber/v2"

	"campusbay/internal/repos"
	"campusbay/internal/services"
	"campusbay/internal/validate"
)

type NotificationHandler struct {
	Notes *repos.NotificationRepo
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	u := currentUser(c)
	notes, err := h.Notes.ListByUser(u.ID)
	if err != nil {
		return fail(c, "notifications.list.fail", err)
	}
	unread, err := h.Notes.UnreadCount(u.ID)
	if err != nil {
		return fail(c, "notifications.list.fail", err)
	}
	return c.JSON(fiber.Map{"notifications": notes, "unread": unread})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid notification id")
	}
	updated, err := h.Notes.MarkRead(id, u.ID)
	if err != nil {
		return fail(c, "notifications.read.fail", err)
	}
	if !updated {
		return fail(c, "notifications.read.fail", services.ErrNotFound)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
