package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	applog "campusbay/internal/log"
	"campusbay/internal/repos"
	"campusbay/internal/services"
	"campusbay/internal/validate"
)

type AdminHandler struct {
	Users     *repos.UserRepo
	Items     *repos.ItemRepo
	Catalog   *services.CatalogService
	Purchases *services.PurchaseService
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Users.ListNonAdmin()
	if err != nil {
		return fail(c, "admin.users.list.fail", err)
	}
	return c.JSON(fiber.Map{"count": len(users), "users": users})
}

// DeleteUser removes a user and everything they own. Admin accounts,
// including the caller's own, are off limits.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	admin := currentUser(c)
	userID, ok := validate.ID(c.Params("userId"))
	if !ok {
		return badRequest(c, "invalid userId")
	}
	if userID == admin.ID {
		return badRequest(c, "cannot delete your own account")
	}
	target, err := h.Users.ByID(userID)
	if err == sql.ErrNoRows {
		return fail(c, "admin.users.delete.fail", services.ErrNotFound)
	}
	if err != nil {
		return fail(c, "admin.users.delete.fail", err)
	}
	if target.Role == "ADMIN" {
		return fail(c, "admin.users.delete.fail", services.ErrForbidden)
	}
	if err := h.Users.DeleteCascade(userID); err != nil {
		return fail(c, "admin.users.delete.fail", err)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"deleted_user_id": userID})
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// ListItems returns every listing in every status for moderation.
func (h *AdminHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.Catalog.ListAll()
	if err != nil {
		return fail(c, "admin.items.list.fail", err)
	}
	return c.JSON(items)
}

// Analytics is the admin dashboard aggregate: user and listing counts plus
// the purchase-ledger stats.
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	users, err := h.Users.Count()
	if err != nil {
		return fail(c, "admin.analytics.fail", err)
	}
	items, err := h.Items.CountByStatus()
	if err != nil {
		return fail(c, "admin.analytics.fail", err)
	}
	stats, err := h.Purchases.Stats()
	if err != nil {
		return fail(c, "admin.analytics.fail", err)
	}
	return c.JSON(fiber.Map{
		"users":     users,
		"items":     items,
		"purchases": stats,
	})
}

type reviewReq struct {
	Action string `json:"action"`
}

// ReviewItem applies the one-shot approve/reject moderation decision.
func (h *AdminHandler) ReviewItem(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid itemId")
	}
	var req reviewReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Action != "approve" && req.Action != "reject" {
		return badRequest(c, `action must be "approve" or "reject"`)
	}

	item, err := h.Catalog.Review(itemID, req.Action == "approve")
	if err != nil {
		return fail(c, "admin.items.review.fail", err)
	}
	applog.Audit(c, "admin.items.review", map[string]any{"item_id": itemID, "action": req.Action})
	return c.JSON(fiber.Map{"message": "Item " + item.Status, "item": item})
}
