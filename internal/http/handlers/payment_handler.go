package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "campusbay/internal/log"
	"campusbay/internal/services"
)

type PaymentHandler struct {
	Payments *services.PaymentService
}

type createOrderReq struct {
	Amount float64 `json:"amount"`
}

// CreateOrder returns a gateway order reference plus the public key id the
// frontend needs to open the checkout widget.
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Amount <= 0 {
		return badRequest(c, "amount must be positive")
	}
	order := h.Payments.CreateOrder(req.Amount)
	applog.Audit(c, "payments.order.create", map[string]any{"order_id": order.ID, "amount": order.Amount})
	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
		"key":     h.Payments.KeyID,
	})
}

type verifyPaymentReq struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// Verify checks the signed confirmation the gateway handed to the frontend.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	var req verifyPaymentReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return badRequest(c, "orderId, paymentId and signature are required")
	}
	if !h.Payments.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		applog.Security(c, "payments.verify.bad_signature", map[string]any{"order_id": req.OrderID})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid signature sent!",
		})
	}
	applog.Audit(c, "payments.verify.ok", map[string]any{"order_id": req.OrderID})
	return c.JSON(fiber.Map{"success": true, "message": "Payment verified successfully"})
}
