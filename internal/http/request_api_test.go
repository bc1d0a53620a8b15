package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type requestView struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	RequesterName  string `json:"requesterName"`
	RequesterEmail string `json:"requesterEmail"`
	Replies        []struct {
		Body          string `json:"body"`
		ResponderName string `json:"responderName"`
	} `json:"replies"`
}

// Post an ask, have another user reply, and check both listings carry the
// populated identities.
func TestRequestBoardFlow(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, "GET", "/api/requests", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("board requires auth, got %d", resp.StatusCode)
	}

	asha := login(t, app, "asha@campusbay.test", "Passw0rd!")
	resp = doJSON(t, app, "POST", "/api/requests", asha, fiber.Map{
		"title":       "Looking for a drafting board",
		"description": "Need one for the design studio next month",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	var created struct {
		Request struct {
			ID string `json:"id"`
		} `json:"request"`
	}
	decode(t, resp, &created)
	if created.Request.ID == "" {
		t.Fatal("no request id in response")
	}

	ravi := login(t, app, "ravi@campusbay.test", "Passw0rd!")
	resp = doJSON(t, app, "POST", "/api/requests/"+created.Request.ID+"/reply", ravi, fiber.Map{
		"message": "I have a spare one, message me",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201 for reply, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/requests", ravi, nil)
	var all []requestView
	decode(t, resp, &all)
	if len(all) != 1 {
		t.Fatalf("want 1 request, got %d", len(all))
	}
	r := all[0]
	if r.RequesterName != "Asha" || r.RequesterEmail != "asha@campusbay.test" {
		t.Fatalf("requester not populated: %+v", r)
	}
	if len(r.Replies) != 1 || r.Replies[0].ResponderName != "Ravi" {
		t.Fatalf("reply not populated: %+v", r.Replies)
	}

	// my-requests is scoped to the caller
	resp = doJSON(t, app, "GET", "/api/requests/my-requests", ravi, nil)
	var mine []requestView
	decode(t, resp, &mine)
	if len(mine) != 0 {
		t.Fatalf("ravi posted nothing, got %d", len(mine))
	}
	resp = doJSON(t, app, "GET", "/api/requests/my-requests", asha, nil)
	decode(t, resp, &mine)
	if len(mine) != 1 || len(mine[0].Replies) != 1 {
		t.Fatalf("asha should see her request with the reply: %+v", mine)
	}
}

func TestRequestReplyValidation(t *testing.T) {
	app, _ := newTestApp(t)
	tok := login(t, app, "ravi@campusbay.test", "Passw0rd!")

	resp := doJSON(t, app, "POST", "/api/requests", tok, fiber.Map{"title": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank title should 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/requests/req-nope/reply", tok, fiber.Map{"message": "hi"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("reply to missing request should 404, got %d", resp.StatusCode)
	}
}

// Contact search is authed, case-insensitive and never leaks admins or
// password material.
func TestContactSearch(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, "GET", "/api/contacts/search?name=asha", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 anonymous, got %d", resp.StatusCode)
	}

	tok := login(t, app, "ravi@campusbay.test", "Passw0rd!")
	resp = doJSON(t, app, "GET", "/api/contacts/search?name=", tok, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty name should 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/contacts/search?name=zzz", tok, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("no match should 404, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/contacts/search?name=ASHA", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var found []map[string]any
	decode(t, resp, &found)
	if len(found) != 1 || found[0]["email"] != "asha@campusbay.test" {
		t.Fatalf("bad result: %+v", found)
	}
	if _, leaked := found[0]["password_hash"]; leaked {
		t.Fatal("hash must not be exposed")
	}

	resp = doJSON(t, app, "GET", "/api/contacts/search?name=admin", tok, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("admins are not listed, got %d", resp.StatusCode)
	}
}
