package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"campusbay/internal/config"
	"campusbay/internal/http/handlers"
	"campusbay/internal/repos"
	"campusbay/internal/services"
)

// newTestApp wires the real handlers against an in-memory database with
// the same route shape as cmd/campusbay.
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	cfg := config.Config{
		MediaDir:      t.TempDir(),
		JWTSecret:     "test-secret",
		GatewayKeyID:  "key_test",
		GatewaySecret: "gw-secret",
	}
	// files behind the seeded knowledge rows
	for _, p := range []string{
		"knowledge/kn-dsa-001/notes.pdf",
		"knowledge/kn-dsa-001/sample.pdf",
		"knowledge/kn-em-001/sheet.pdf",
	} {
		full := filepath.Join(cfg.MediaDir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("%PDF-1.4 fixture"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	authSvc := services.NewAuthService(repos.NewUserRepo(db), cfg.JWTSecret)
	deps := handlers.NewDeps(db, cfg, authSvc)

	app := fiber.New()
	app.Use(handlers.AttachUser(authSvc))
	app.Get("/media/*", handlers.Media(cfg.MediaDir))
	api := app.Group("/api")
	authed := handlers.RequireUser(authSvc)

	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/login", deps.AuthHandler.Login)

	api.Get("/items", deps.ItemHandler.List)
	api.Post("/items/search", deps.ItemHandler.Search)
	api.Get("/items/:id", deps.ItemHandler.Get)

	api.Get("/cart", authed, deps.CartHandler.Get)
	api.Post("/cart/add", authed, deps.CartHandler.Add)
	api.Post("/cart/remove", authed, deps.CartHandler.Remove)
	api.Post("/cart/checkout", authed, deps.CartHandler.Checkout)

	api.Get("/knowledge", deps.KnowledgeHandler.List)
	api.Get("/knowledge/download/:id", authed, deps.KnowledgeHandler.Download)
	api.Get("/knowledge/sample/:id", deps.KnowledgeHandler.Sample)
	api.Get("/knowledge/:id", deps.KnowledgeHandler.Get)
	api.Post("/purchases/create", authed, deps.PurchaseHandler.Create)

	api.Post("/requests", authed, deps.RequestHandler.Create)
	api.Get("/requests", authed, deps.RequestHandler.List)
	api.Get("/requests/my-requests", authed, deps.RequestHandler.Mine)
	api.Post("/requests/:id/reply", authed, deps.RequestHandler.Reply)
	api.Get("/contacts/search", authed, deps.ContactHandler.Search)

	api.Post("/messages", authed, deps.MessageHandler.Send)
	api.Get("/messages", authed, deps.MessageHandler.Inbox)
	api.Get("/messages/:userId", authed, deps.MessageHandler.Conversation)
	api.Get("/notifications", authed, deps.NotificationHandler.List)
	api.Put("/notifications/:id/read", authed, deps.NotificationHandler.MarkRead)

	admin := api.Group("/admin", authed, handlers.AdminOnly())
	admin.Get("/users", deps.AdminHandler.ListUsers)
	admin.Delete("/users/:userId", deps.AdminHandler.DeleteUser)
	admin.Get("/items", deps.AdminHandler.ListItems)
	admin.Put("/items/:id/review", deps.AdminHandler.ReviewItem)
	admin.Get("/analytics", deps.AdminHandler.Analytics)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 15000)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatal(err)
	}
}

// login authenticates a seeded user and returns the bearer token.
func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email": email, "password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	decode(t, resp, &body)
	if body.Token == "" {
		t.Fatal("no token in login response")
	}
	return body.Token
}
