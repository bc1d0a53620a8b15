package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"campusbay/internal/config"
	"campusbay/internal/http/handlers"
	applog "campusbay/internal/log"
	"campusbay/internal/repos"
	"campusbay/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repos.NewUserRepo(db)
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong. Please try again.",
			})
		},
	})
	// Photo uploads are the largest requests: 3 x 2 MiB plus form overhead.
	app.Server().MaxRequestBodySize = 8 << 20

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(handlers.AttachUser(authSvc))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/media/")
		},
	}))

	// ---------- Media ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /media -> %s", mediaDir)

	// Guarded: traversal blocked, study-material files excluded.
	app.Get("/media/*", handlers.Media(mediaDir))

	// ---------- Routes ----------
	deps := handlers.NewDeps(db, cfg, authSvc)
	api := app.Group("/api")

	// Auth (login throttled)
	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts. Please try again later.",
			})
		},
	}), deps.AuthHandler.Login)

	// Catalogue (public reads; AttachUser hides a seller's own listings)
	api.Get("/items", deps.ItemHandler.List)
	api.Post("/items/search", deps.ItemHandler.Search)
	api.Get("/items/:id", deps.ItemHandler.Get)

	// Seller listings
	authed := handlers.RequireUser(authSvc)
	api.Get("/items/user/:userId", authed, deps.ItemHandler.ListByUser)
	api.Post("/items", authed, deps.ItemHandler.Create)
	api.Put("/items/:id", authed, deps.ItemHandler.Update)
	api.Delete("/items/:id", authed, deps.ItemHandler.Delete)

	// Cart
	api.Get("/cart", authed, deps.CartHandler.Get)
	api.Post("/cart/add", authed, deps.CartHandler.Add)
	api.Post("/cart/remove", authed, deps.CartHandler.Remove)
	api.Post("/cart/checkout", authed, deps.CartHandler.Checkout)

	// Knowledge hub (full files only via the ledger-checked download)
	api.Get("/knowledge", deps.KnowledgeHandler.List)
	api.Get("/knowledge/mine", authed, deps.KnowledgeHandler.Mine)
	api.Get("/knowledge/download/:id", authed, deps.KnowledgeHandler.Download)
	api.Get("/knowledge/sample/:id", deps.KnowledgeHandler.Sample)
	api.Get("/knowledge/:id", deps.KnowledgeHandler.Get)
	api.Post("/knowledge", authed, deps.KnowledgeHandler.Create)
	api.Delete("/knowledge/:id", authed, deps.KnowledgeHandler.Delete)

	// Purchases
	adminOnly := handlers.AdminOnly()
	api.Get("/purchases/check/:itemId", authed, deps.PurchaseHandler.Check)
	api.Get("/purchases/my-purchases", authed, deps.PurchaseHandler.MyPurchases)
	api.Post("/purchases/create", authed, deps.PurchaseHandler.Create)
	api.Post("/purchases/bulk", authed, deps.PurchaseHandler.Bulk)
	api.Get("/purchases/verify/:transactionId", authed, deps.PurchaseHandler.VerifyTransaction)
	api.Get("/purchases/admin/all", authed, adminOnly, deps.PurchaseHandler.AdminList)
	api.Get("/purchases/admin/stats", authed, adminOnly, deps.PurchaseHandler.AdminStats)
	api.Put("/purchases/:id/refund", authed, adminOnly, deps.PurchaseHandler.Refund)
	api.Get("/purchases/:id", authed, deps.PurchaseHandler.Get)
	api.Delete("/purchases/:id", authed, deps.PurchaseHandler.Delete)

	// Payments
	api.Post("/payment/create-order", authed, deps.PaymentHandler.CreateOrder)
	api.Post("/payment/verify", authed, deps.PaymentHandler.Verify)

	// Request board & contact directory
	api.Post("/requests", authed, deps.RequestHandler.Create)
	api.Get("/requests", authed, deps.RequestHandler.List)
	api.Get("/requests/my-requests", authed, deps.RequestHandler.Mine)
	api.Post("/requests/:id/reply", authed, deps.RequestHandler.Reply)
	api.Get("/contacts/search", authed, deps.ContactHandler.Search)

	// Messaging & notifications
	api.Post("/messages", authed, deps.MessageHandler.Send)
	api.Get("/messages", authed, deps.MessageHandler.Inbox)
	api.Get("/messages/:userId", authed, deps.MessageHandler.Conversation)
	api.Get("/notifications", authed, deps.NotificationHandler.List)
	api.Put("/notifications/:id/read", authed, deps.NotificationHandler.MarkRead)

	// Admin
	admin := api.Group("/admin", authed, adminOnly)
	admin.Get("/users", deps.AdminHandler.ListUsers)
	admin.Delete("/users/:userId", deps.AdminHandler.DeleteUser)
	admin.Get("/items", deps.AdminHandler.ListItems)
	admin.Put("/items/:id/review", deps.AdminHandler.ReviewItem)
	admin.Get("/analytics", deps.AdminHandler.Analytics)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
