package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "campusbay/internal/log"
	"campusbay/internal/services"
	"campusbay/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type registerReq struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Year       string `json:"year"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return badRequest(c, "invalid email")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return badRequest(c, "name is required (max 60 characters)")
	}
	if !validate.Password(req.Password) {
		return badRequest(c, "password must be 8-40 characters with upper, lower, digit and symbol")
	}

	u, tok, err := h.Auth.Register(email, name, req.Password, req.Department, req.Year)
	if err != nil {
		return fail(c, "auth.register.fail", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"email": email})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": tok, "user": u})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	u, tok, err := h.Auth.Login(email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return fail(c, "auth.login.fail", err)
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(fiber.Map{"token": tok, "user": u})
}
