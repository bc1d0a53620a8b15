package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"campusbay/internal/domain"
	applog "campusbay/internal/log"
	"campusbay/internal/repos"
	"campusbay/internal/services"
	"campusbay/internal/validate"
)

type MessageHandler struct {
	Messages *repos.MessageRepo
	Users    *repos.UserRepo
}

type sendMessageReq struct {
	RecipientID string `json:"recipientId"`
	Body        string `json:"body"`
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	u := currentUser(c)
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	recipientID, ok := validate.ID(req.RecipientID)
	if !ok {
		return badRequest(c, "invalid recipientId")
	}
	if req.Body == "" || len(req.Body) > 2000 {
		return badRequest(c, "message body must be 1-2000 characters")
	}
	if recipientID == u.ID {
		return badRequest(c, "cannot message yourself")
	}
	if _, err := h.Users.ByID(recipientID); err == sql.ErrNoRows {
		return fail(c, "messages.send.fail", services.ErrNotFound)
	} else if err != nil {
		return fail(c, "messages.send.fail", err)
	}

	m := domain.Message{
		ID:          uuid.NewString(),
		SenderID:    u.ID,
		RecipientID: recipientID,
		Body:        req.Body,
	}
	if err := h.Messages.Insert(m); err != nil {
		return fail(c, "messages.send.fail", err)
	}
	applog.Audit(c, "messages.send", map[string]any{"recipient_id": recipientID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Message sent", "sent": m})
}

// Conversation returns the two-way history with a peer and marks their
// messages as read.
func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	u := currentUser(c)
	peerID, ok := validate.ID(c.Params("userId"))
	if !ok {
		return badRequest(c, "invalid userId")
	}
	msgs, err := h.Messages.Conversation(u.ID, peerID)
	if err != nil {
		return fail(c, "messages.conversation.fail", err)
	}
	if err := h.Messages.MarkRead(u.ID, peerID); err != nil {
		applog.Error(c, "messages.mark_read.fail", err, map[string]any{"peer_id": peerID})
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// Inbox lists conversation partners with unread counts, most recent first.
func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	u := currentUser(c)
	partners, err := h.Messages.Partners(u.ID)
	if err != nil {
		return fail(c, "messages.inbox.fail", err)
	}
	return c.JSON(fiber.Map{"conversations": partners})
}
