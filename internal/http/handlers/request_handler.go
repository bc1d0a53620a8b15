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

// RequestHandler serves the help-request board: any signed-in user may
// post an ask or reply to someone else's.
type RequestHandler struct {
	Requests *repos.RequestRepo
}

type createRequestReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *RequestHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	var req createRequestReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	title, ok := validate.Name(req.Title)
	if !ok {
		return badRequest(c, "title is required")
	}
	r := domain.Request{
		ID:          uuid.NewString(),
		RequesterID: u.ID,
		Title:       title,
		Description: req.Description,
	}
	if err := h.Requests.Insert(r); err != nil {
		return fail(c, "requests.create.fail", err)
	}
	applog.Audit(c, "requests.create", map[string]any{"request_id": r.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Request posted", "request": r})
}

func (h *RequestHandler) List(c *fiber.Ctx) error {
	reqs, err := h.Requests.ListAll()
	if err != nil {
		return fail(c, "requests.list.fail", err)
	}
	return c.JSON(reqs)
}

func (h *RequestHandler) Mine(c *fiber.Ctx) error {
	u := currentUser(c)
	reqs, err := h.Requests.ListByRequester(u.ID)
	if err != nil {
		return fail(c, "requests.mine.fail", err)
	}
	return c.JSON(reqs)
}

type replyReq struct {
	Message string `json:"message"`
}

func (h *RequestHandler) Reply(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req replyReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Message == "" || len(req.Message) > 2000 {
		return badRequest(c, "reply must be 1-2000 characters")
	}
	if _, err := h.Requests.Get(id); err == sql.ErrNoRows {
		return fail(c, "requests.reply.fail", services.ErrNotFound)
	} else if err != nil {
		return fail(c, "requests.reply.fail", err)
	}
	rep := domain.RequestReply{
		ID:          uuid.NewString(),
		RequestID:   id,
		ResponderID: u.ID,
		Body:        req.Message,
	}
	if err := h.Requests.AddReply(rep); err != nil {
		return fail(c, "requests.reply.fail", err)
	}
	applog.Audit(c, "requests.reply", map[string]any{"request_id": id})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Reply added", "reply": rep})
}
