package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "campusbay/internal/log"
	"campusbay/internal/repos"
	"campusbay/internal/services"
	"campusbay/internal/validate"
)

type PurchaseHandler struct {
	Purchases *services.PurchaseService
}

// Check reports whether the caller purchased the item; a missing item is
// simply "not purchased", never an error.
func (h *PurchaseHandler) Check(c *fiber.Ctx) error {
	u := currentUser(c)
	itemID, ok := validate.ID(c.Params("itemId"))
	if !ok {
		return badRequest(c, "invalid itemId")
	}
	purchased, err := h.Purchases.CheckPurchased(u.ID, itemID)
	if err != nil {
		return fail(c, "purchases.check.fail", err)
	}
	return c.JSON(fiber.Map{"purchased": purchased})
}

func (h *PurchaseHandler) MyPurchases(c *fiber.Ctx) error {
	u := currentUser(c)
	purchases, err := h.Purchases.ListMine(u.ID)
	if err != nil {
		return fail(c, "purchases.mine.fail", err)
	}
	return c.JSON(fiber.Map{"count": len(purchases), "purchases": purchases})
}

type createPurchaseReq struct {
	ItemID        string `json:"itemId"`
	TransactionID string `json:"transactionId"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	var req createPurchaseReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	itemID, ok := validate.ID(req.ItemID)
	if !ok {
		return badRequest(c, "Item ID is required")
	}
	if req.PaymentMethod != "" {
		if _, ok := validate.PaymentMethod(req.PaymentMethod); !ok {
			return badRequest(c, "invalid paymentMethod")
		}
	}

	p, err := h.Purchases.Create(u.ID, itemID, req.TransactionID, req.PaymentMethod)
	if err != nil {
		return fail(c, "purchases.create.fail", err)
	}
	applog.Audit(c, "purchases.create", map[string]any{"purchase_id": p.ID, "item_id": itemID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Purchase recorded successfully",
		"purchase": p,
	})
}

type bulkPurchaseReq struct {
	Items         []string `json:"items"`
	PaymentMethod string   `json:"paymentMethod"`
}

// Bulk records purchases independently per item; failures land in the
// errors list and never abort the batch.
func (h *PurchaseHandler) Bulk(c *fiber.Ctx) error {
	u := currentUser(c)
	var req bulkPurchaseReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.Items) == 0 {
		return badRequest(c, "Items array is required")
	}

	res, err := h.Purchases.BulkCreate(u.ID, req.Items, req.PaymentMethod)
	if err != nil {
		return fail(c, "purchases.bulk.fail", err)
	}
	applog.Audit(c, "purchases.bulk", map[string]any{
		"ok":     len(res.Purchases),
		"failed": len(res.Errors),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        strconv.Itoa(len(res.Purchases)) + " purchase(s) recorded successfully",
		"totalPurchases": len(res.Purchases),
		"totalAmount":    res.TotalAmount,
		"purchases":      res.Purchases,
		"errors":         res.Errors,
	})
}

func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid purchase id")
	}
	p, err := h.Purchases.Get(u.ID, u.Role, id)
	if err != nil {
		return fail(c, "purchases.get.fail", err)
	}
	return c.JSON(p)
}

func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid purchase id")
	}
	if err := h.Purchases.Delete(u.ID, u.Role, id); err != nil {
		return fail(c, "purchases.delete.fail", err)
	}
	applog.Audit(c, "purchases.delete", map[string]any{"purchase_id": id})
	return c.JSON(fiber.Map{"message": "Purchase deleted successfully"})
}

type refundReq struct {
	Reason string `json:"reason"`
}

func (h *PurchaseHandler) Refund(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid purchase id")
	}
	var req refundReq
	_ = c.BodyParser(&req)

	p, err := h.Purchases.Refund(id, req.Reason)
	if err != nil {
		return fail(c, "purchases.refund.fail", err)
	}
	applog.Audit(c, "purchases.refund", map[string]any{"purchase_id": id})
	return c.JSON(fiber.Map{"message": "Purchase refunded successfully", "purchase": p})
}

func (h *PurchaseHandler) AdminList(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 {
		limit = 50
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	f := repos.AdminFilter{
		Status: c.Query("status"),
		UserID: c.Query("userId"),
		ItemID: c.Query("itemId"),
		Limit:  limit,
		Page:   page,
	}
	purchases, total, err := h.Purchases.AdminList(f)
	if err != nil {
		return fail(c, "purchases.admin.list.fail", err)
	}
	pages := (total + f.Limit - 1) / f.Limit
	return c.JSON(fiber.Map{
		"purchases": purchases,
		"pagination": fiber.Map{
			"total": total,
			"page":  f.Page,
			"limit": f.Limit,
			"pages": pages,
		},
	})
}

func (h *PurchaseHandler) AdminStats(c *fiber.Ctx) error {
	stats, err := h.Purchases.Stats()
	if err != nil {
		return fail(c, "purchases.admin.stats.fail", err)
	}
	return c.JSON(stats)
}

// VerifyTransaction looks a purchase up by gateway transaction id.
func (h *PurchaseHandler) VerifyTransaction(c *fiber.Ctx) error {
	txn := c.Params("transactionId")
	if txn == "" {
		return badRequest(c, "transactionId is required")
	}
	p, err := h.Purchases.VerifyByTransaction(txn)
	if err != nil {
		return fail(c, "purchases.verify.fail", err)
	}
	return c.JSON(fiber.Map{"valid": true, "purchase": p})
}
