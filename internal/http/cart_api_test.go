package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestCartRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)

	for _, r := range []struct{ method, path string }{
		{"GET", "/api/cart"},
		{"POST", "/api/cart/add"},
		{"POST", "/api/cart/remove"},
		{"POST", "/api/cart/checkout"},
	} {
		resp := doJSON(t, app, r.method, r.path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: want 401, got %d", r.method, r.path, resp.StatusCode)
		}
	}
}

func TestCartAddRemoveCheckoutFlow(t *testing.T) {
	app, _ := newTestApp(t)
	tok := login(t, app, "ravi@campusbay.test", "Passw0rd!")

	// empty cart reads fine
	resp := doJSON(t, app, "GET", "/api/cart", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var cart struct {
		Items []struct {
			ItemID   string  `json:"itemId"`
			Quantity int     `json:"quantity"`
			Price    float64 `json:"price"`
		} `json:"items"`
	}
	decode(t, resp, &cart)
	if len(cart.Items) != 0 {
		t.Fatalf("want empty cart, got %+v", cart.Items)
	}

	// add twice: line quantity accumulates, stock counts down
	resp = doJSON(t, app, "POST", "/api/cart/add", tok, fiber.Map{"itemId": "it-calc-001"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	var addBody struct {
		UpdatedQuantity int `json:"updatedQuantity"`
		Cart            struct {
			Items []struct {
				Quantity int `json:"quantity"`
			} `json:"items"`
		} `json:"cart"`
	}
	decode(t, resp, &addBody)
	if addBody.UpdatedQuantity != 2 {
		t.Fatalf("want remaining 2, got %d", addBody.UpdatedQuantity)
	}

	resp = doJSON(t, app, "POST", "/api/cart/add", tok, fiber.Map{"itemId": "it-calc-001"})
	decode(t, resp, &addBody)
	if addBody.UpdatedQuantity != 1 || addBody.Cart.Items[0].Quantity != 2 {
		t.Fatalf("bad second add: %+v", addBody)
	}

	// checkout pays for the reserved units and empties the cart
	resp = doJSON(t, app, "POST", "/api/cart/checkout", tok, fiber.Map{"paymentMethod": "upi"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var co struct {
		Message string `json:"message"`
		Order   struct {
			TotalAmount float64 `json:"totalAmount"`
		} `json:"order"`
	}
	decode(t, resp, &co)
	if co.Message != "Payment successful" || co.Order.TotalAmount != 900 {
		t.Fatalf("bad checkout: %+v", co)
	}

	// cart is gone; a second checkout has nothing to pay for
	resp = doJSON(t, app, "POST", "/api/cart/checkout", tok, fiber.Map{"paymentMethod": "upi"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 on empty cart, got %d", resp.StatusCode)
	}
}

func TestCartAddOwnItemForbidden(t *testing.T) {
	app, _ := newTestApp(t)
	tok := login(t, app, "asha@campusbay.test", "Passw0rd!")

	resp := doJSON(t, app, "POST", "/api/cart/add", tok, fiber.Map{"itemId": "it-calc-001"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403 for own item, got %d", resp.StatusCode)
	}
}

// Missing and out-of-stock items are indistinguishable to the buyer.
func TestCartAddMissingItem(t *testing.T) {
	app, _ := newTestApp(t)
	tok := login(t, app, "ravi@campusbay.test", "Passw0rd!")

	resp := doJSON(t, app, "POST", "/api/cart/add", tok, fiber.Map{"itemId": "no-such-item"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}

	// the single cycle unit, then one more
	resp = doJSON(t, app, "POST", "/api/cart/add", tok, fiber.Map{"itemId": "it-cycle-001"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, "POST", "/api/cart/add", tok, fiber.Map{"itemId": "it-cycle-001"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 when stock is gone, got %d", resp.StatusCode)
	}

	// remove puts the unit back
	resp = doJSON(t, app, "POST", "/api/cart/remove", tok, fiber.Map{"itemId": "it-cycle-001"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, "POST", "/api/cart/add", tok, fiber.Map{"itemId": "it-cycle-001"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201 after restore, got %d", resp.StatusCode)
	}
}

// A buyer's own listings are hidden from their catalogue view.
func TestItemsListExcludesOwn(t *testing.T) {
	app, _ := newTestApp(t)
	tok := login(t, app, "asha@campusbay.test", "Passw0rd!")

	resp := doJSON(t, app, "GET", "/api/items", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var items []struct {
		ID     string `json:"id"`
		Seller struct {
			ID string `json:"id"`
		} `json:"seller"`
	}
	decode(t, resp, &items)
	for _, it := range items {
		if it.Seller.ID == "u-asha" {
			t.Fatalf("own listing %s leaked into buyer view", it.ID)
		}
	}

	// anonymous view shows everything approved
	resp = doJSON(t, app, "GET", "/api/items", "", nil)
	decode(t, resp, &items)
	if len(items) != 2 {
		t.Fatalf("want 2 approved items for anonymous, got %d", len(items))
	}
}
