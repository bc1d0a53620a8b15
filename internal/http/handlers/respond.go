package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"campusbay/internal/domain"
	applog "campusbay/internal/log"
	"campusbay/internal/services"
)

// fail maps business errors to HTTP statuses. Unknown errors are logged
// and surfaced as a generic 500 so internals never leak to the client.
func fail(c *fiber.Ctx, action string, err error) error {
	type mapping struct {
		target error
		status int
		msg    string
	}
	table := []mapping{
		{services.ErrSelfPurchase, fiber.StatusForbidden, "Cannot add your own item to cart"},
		{services.ErrOutOfStock, fiber.StatusNotFound, "Item not found or out of stock"},
		{services.ErrNotFound, fiber.StatusNotFound, "Not found"},
		{services.ErrForbidden, fiber.StatusForbidden, "Unauthorized access"},
		{services.ErrEmptyCart, fiber.StatusBadRequest, "Cart is empty"},
		{services.ErrDuplicatePurchase, fiber.StatusBadRequest, "You have already purchased this item"},
		{services.ErrTxnTaken, fiber.StatusBadRequest, "Transaction ID already used"},
		{services.ErrAlreadyRefunded, fiber.StatusBadRequest, "Purchase already refunded"},
		{services.ErrAlreadyReviewed, fiber.StatusBadRequest, "Item has already been reviewed"},
		{services.ErrEmailTaken, fiber.StatusConflict, "Email already registered"},
		{services.ErrBadCreds, fiber.StatusUnauthorized, "Invalid email or password"},
	}
	for _, m := range table {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(fiber.Map{"error": m.msg})
		}
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// currentUser returns the authenticated user attached by RequireUser.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
