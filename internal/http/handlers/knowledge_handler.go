package handlers

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"campusbay/internal/domain"
	applog "campusbay/internal/log"
	"campusbay/internal/repos"
	"campusbay/internal/services"
	"campusbay/internal/validate"
)

type KnowledgeHandler struct {
	Knowledge *repos.KnowledgeRepo
	Purchases *services.PurchaseService
	MediaDir  string
}

func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	subject := c.Query("subject")
	q := ""
	if raw := c.Query("q"); raw != "" {
		term, ok := validate.SearchTerm(raw)
		if !ok {
			return badRequest(c, "invalid search term")
		}
		q = term
	}
	items, err := h.Knowledge.List(subject, q)
	if err != nil {
		return fail(c, "knowledge.list.fail", err)
	}
	// Paid content exposes only its preview until purchased.
	out := make([]fiber.Map, 0, len(items))
	for _, k := range items {
		out = append(out, h.project(c, k))
	}
	return c.JSON(out)
}

func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid id")
	}
	k, err := h.Knowledge.Get(id)
	if err == sql.ErrNoRows {
		return fail(c, "knowledge.get.fail", services.ErrNotFound)
	}
	if err != nil {
		return fail(c, "knowledge.get.fail", err)
	}
	return c.JSON(h.project(c, k))
}

// project hides the full file URL of paid material the caller hasn't
// bought; the sample preview stays visible.
func (h *KnowledgeHandler) project(c *fiber.Ctx, k domain.Knowledge) fiber.Map {
	purchased := false
	if u := currentUser(c); u != nil {
		if u.ID == k.OwnerID {
			purchased = true
		} else if ok, err := h.Purchases.CheckPurchased(u.ID, k.ID); err == nil {
			purchased = ok
		}
	}
	fileURL := k.FileURL
	if k.IsPaid && !purchased {
		fileURL = ""
	}
	return fiber.Map{
		"id":          k.ID,
		"ownerId":     k.OwnerID,
		"title":       k.Title,
		"description": k.Description,
		"subject":     k.Subject,
		"price":       k.Price,
		"isPaid":      k.IsPaid,
		"fileUrl":     fileURL,
		"previewUrl":  k.PreviewURL,
		"purchased":   purchased,
		"downloads":   k.Downloads,
		"createdAt":   k.CreatedAt,
	}
}

// Download streams the full material. Paid content requires a completed
// ledger row unless the caller owns it; the ledger is checked here, not
// just in the listing projection.
func (h *KnowledgeHandler) Download(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid id")
	}
	k, err := h.Knowledge.Get(id)
	if err == sql.ErrNoRows {
		return fail(c, "knowledge.download.fail", services.ErrNotFound)
	}
	if err != nil {
		return fail(c, "knowledge.download.fail", err)
	}
	if k.IsPaid && k.Price > 0 && k.OwnerID != u.ID {
		purchased, err := h.Purchases.CheckPurchased(u.ID, k.ID)
		if err != nil {
			return fail(c, "knowledge.download.fail", err)
		}
		if !purchased {
			applog.Security(c, "knowledge.download.unpaid", map[string]any{"knowledge_id": id})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":            "Please purchase this content before downloading",
				"requiresPurchase": true,
				"price":            k.Price,
			})
		}
	}
	if err := h.Knowledge.IncrementDownloads(id); err != nil {
		applog.Error(c, "knowledge.download.count.fail", err, map[string]any{"knowledge_id": id})
	}
	applog.Audit(c, "knowledge.download", map[string]any{"knowledge_id": id})
	return h.sendMaterial(c, k.FileURL)
}

// Sample streams the free preview of a material, no auth required.
func (h *KnowledgeHandler) Sample(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid id")
	}
	k, err := h.Knowledge.Get(id)
	if err == sql.ErrNoRows {
		return fail(c, "knowledge.sample.fail", services.ErrNotFound)
	}
	if err != nil {
		return fail(c, "knowledge.sample.fail", err)
	}
	if k.PreviewURL == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No sample available for this material"})
	}
	return h.sendMaterial(c, k.PreviewURL)
}

func (h *KnowledgeHandler) sendMaterial(c *fiber.Ctx, rel string) error {
	if rel == "" {
		return fail(c, "knowledge.file.missing", services.ErrNotFound)
	}
	path := filepath.Join(h.MediaDir, filepath.FromSlash(rel))
	if _, err := os.Stat(path); err != nil {
		return fail(c, "knowledge.file.missing", services.ErrNotFound)
	}
	return c.Download(path, filepath.Base(path))
}

type createKnowledgeReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Subject     string  `json:"subject"`
	Price       float64 `json:"price"`
	IsPaid      bool    `json:"isPaid"`
	FileURL     string  `json:"fileUrl"`
	PreviewURL  string  `json:"previewUrl"`
}

func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	var req createKnowledgeReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	title, ok := validate.Name(req.Title)
	if !ok {
		return badRequest(c, "title is required")
	}
	if req.Price < 0 {
		return badRequest(c, "invalid price")
	}
	k := domain.Knowledge{
		ID:          uuid.NewString(),
		OwnerID:     u.ID,
		Title:       title,
		Description: req.Description,
		Subject:     req.Subject,
		Price:       req.Price,
		IsPaid:      req.IsPaid,
		FileURL:     req.FileURL,
		PreviewURL:  req.PreviewURL,
	}
	if err := h.Knowledge.Create(k); err != nil {
		return fail(c, "knowledge.create.fail", err)
	}
	applog.Audit(c, "knowledge.create", map[string]any{"knowledge_id": k.ID})
	return c.Status(fiber.StatusCreated).JSON(k)
}

func (h *KnowledgeHandler) Mine(c *fiber.Ctx) error {
	u := currentUser(c)
	items, err := h.Knowledge.ListByOwner(u.ID)
	if err != nil {
		return fail(c, "knowledge.mine.fail", err)
	}
	return c.JSON(items)
}

// Delete removes a material. Owner or admin only; existing purchase rows
// cascade away with it.
func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid id")
	}
	k, err := h.Knowledge.Get(id)
	if err == sql.ErrNoRows {
		return fail(c, "knowledge.delete.fail", services.ErrNotFound)
	}
	if err != nil {
		return fail(c, "knowledge.delete.fail", err)
	}
	if k.OwnerID != u.ID && u.Role != "ADMIN" {
		return fail(c, "knowledge.delete.fail", services.ErrForbidden)
	}
	if err := h.Knowledge.Delete(id); err != nil {
		return fail(c, "knowledge.delete.fail", err)
	}
	applog.Audit(c, "knowledge.delete", map[string]any{"knowledge_id": id})
	return c.JSON(fiber.Map{"message": "Material deleted successfully"})
}
