package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "campusbay/internal/log"
	"campusbay/internal/services"
	"campusbay/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartItemReq struct {
	ItemID string `json:"itemId"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	var req cartItemReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "itemId is required")
	}
	itemID, ok := validate.ID(req.ItemID)
	if !ok {
		return badRequest(c, "Invalid itemId")
	}

	res, err := h.Cart.Add(u.ID, itemID)
	if err != nil {
		return fail(c, "cart.add.fail", err)
	}
	applog.Audit(c, "cart.add", map[string]any{"item_id": itemID, "remaining": res.RemainingQuantity})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":         "Item added to cart successfully",
		"cart":            res.Cart,
		"updatedQuantity": res.RemainingQuantity,
	})
}

// Get returns {items: []} for users without a cart; never an error.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	u := currentUser(c)
	cart, err := h.Cart.Get(u.ID)
	if err != nil {
		return fail(c, "cart.get.fail", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	u := currentUser(c)
	var req cartItemReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "itemId is required")
	}
	itemID, ok := validate.ID(req.ItemID)
	if !ok {
		return badRequest(c, "Invalid itemId")
	}

	cart, released, err := h.Cart.Remove(u.ID, itemID)
	if err != nil {
		return fail(c, "cart.remove.fail", err)
	}
	if !released {
		// Item row vanished while reserved; reservation discarded as-is.
		applog.Info(c, "cart.remove.release_skipped", map[string]any{"item_id": itemID})
	}
	applog.Audit(c, "cart.remove", map[string]any{"item_id": itemID})
	return c.JSON(fiber.Map{
		"message": "Item removed from cart and availability restored",
		"cart":    cart,
	})
}

type checkoutReq struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	u := currentUser(c)
	var req checkoutReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "paymentMethod is required")
	}
	method, ok := validate.PaymentMethod(req.PaymentMethod)
	if !ok {
		return badRequest(c, "invalid paymentMethod")
	}

	order, err := h.Cart.Checkout(u.ID, method)
	if err != nil {
		return fail(c, "cart.checkout.fail", err)
	}
	applog.Audit(c, "cart.checkout", map[string]any{
		"total":  order.TotalAmount,
		"method": method,
		"lines":  len(order.Items),
	})
	return c.JSON(fiber.Map{"message": "Payment successful", "order": order})
}
