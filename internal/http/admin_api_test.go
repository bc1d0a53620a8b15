package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, "GET", "/api/admin/users", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 anonymous, got %d", resp.StatusCode)
	}

	tok := login(t, app, "asha@campusbay.test", "Passw0rd!")
	resp = doJSON(t, app, "GET", "/api/admin/users", tok, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403 for USER role, got %d", resp.StatusCode)
	}
}

func TestAdminListsUsersAndItems(t *testing.T) {
	app, _ := newTestApp(t)
	tok := login(t, app, "admin@campusbay.test", "Passw0rd!")

	resp := doJSON(t, app, "GET", "/api/admin/users", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var users struct {
		Count int `json:"count"`
	}
	decode(t, resp, &users)
	if users.Count != 2 {
		t.Fatalf("want 2 non-admin users, got %d", users.Count)
	}

	// admin item view includes pending listings
	resp = doJSON(t, app, "GET", "/api/admin/items", tok, nil)
	var items []struct {
		Status string `json:"status"`
	}
	decode(t, resp, &items)
	if len(items) != 3 {
		t.Fatalf("want all 3 seeded items, got %d", len(items))
	}

	resp = doJSON(t, app, "GET", "/api/admin/analytics", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var analytics struct {
		Users int `json:"users"`
		Items []struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		} `json:"items"`
	}
	decode(t, resp, &analytics)
	if analytics.Users != 2 || len(analytics.Items) == 0 {
		t.Fatalf("bad analytics: %+v", analytics)
	}
}

func TestAdminReviewIsOneShot(t *testing.T) {
	app, _ := newTestApp(t)
	tok := login(t, app, "admin@campusbay.test", "Passw0rd!")

	resp := doJSON(t, app, "PUT", "/api/admin/items/it-lamp-001/review", tok, fiber.Map{"action": "bless"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 for unknown action, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "PUT", "/api/admin/items/it-lamp-001/review", tok, fiber.Map{"action": "approve"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var body struct {
		Item struct {
			Status string `json:"status"`
		} `json:"item"`
	}
	decode(t, resp, &body)
	if body.Item.Status != "approved" {
		t.Fatalf("want approved, got %s", body.Item.Status)
	}

	resp = doJSON(t, app, "PUT", "/api/admin/items/it-lamp-001/review", tok, fiber.Map{"action": "reject"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 on second review, got %d", resp.StatusCode)
	}
}

func TestAdminDeleteUserRules(t *testing.T) {
	app, db := newTestApp(t)
	tok := login(t, app, "admin@campusbay.test", "Passw0rd!")

	resp := doJSON(t, app, "DELETE", "/api/admin/users/u-admin", tok, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self-delete should 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "DELETE", "/api/admin/users/u-ravi", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	// the user's listings went with them
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM items WHERE seller_id='u-ravi'`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("want 0 items after cascade, got %d", n)
	}

	resp = doJSON(t, app, "DELETE", "/api/admin/users/u-ravi", tok, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 for missing user, got %d", resp.StatusCode)
	}
}
