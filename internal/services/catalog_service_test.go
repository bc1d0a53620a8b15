package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"campusbay/internal/repos"
	"campusbay/internal/services"
)

func newCatalogSvc(t *testing.T) (*services.CatalogService, *repos.ItemRepo, *repos.NotificationRepo, *sqlx.DB) {
	t.Helper()
	db := memdb(t)
	itemRepo := repos.NewItemRepo(db)
	noteRepo := repos.NewNotificationRepo(db)
	return services.NewCatalogService(itemRepo, noteRepo), itemRepo, noteRepo, db
}

func TestCatalogCreateStartsPending(t *testing.T) {
	svc, _, _, _ := newCatalogSvc(t)

	item, err := svc.Create("u-ravi", services.NewItemInput{
		Name:           "Drafter",
		Description:    "First-year drafter kit",
		Price:          250,
		Quantity:       1,
		YearsUsed:      1,
		DeliveryOption: "buyer_pickup",
	})
	if err != nil {
		t.Fatal(err)
	}
	if item.Status != "pending" {
		t.Fatalf("want pending, got %s", item.Status)
	}
	if !item.Available {
		t.Fatal("quantity 1 should read as available")
	}

	// Pending listings stay out of the public catalogue.
	public, err := svc.ListApproved("")
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range public {
		if it.ID == item.ID {
			t.Fatal("pending item leaked into the approved list")
		}
	}
}

// Review is one-shot: the second decision hits a terminal status and fails.
// The seller gets a notification either way.
func TestCatalogReviewOnce(t *testing.T) {
	svc, _, notes, _ := newCatalogSvc(t)

	item, err := svc.Review("it-lamp-001", true)
	if err != nil {
		t.Fatal(err)
	}
	if item.Status != "approved" {
		t.Fatalf("want approved, got %s", item.Status)
	}

	if _, err := svc.Review("it-lamp-001", false); err != services.ErrAlreadyReviewed {
		t.Fatalf("want ErrAlreadyReviewed, got %v", err)
	}

	// it-lamp-001 belongs to u-asha
	got, err := notes.ListByUser("u-asha")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RelatedItemID != "it-lamp-001" {
		t.Fatalf("want one moderation notification, got %+v", got)
	}
}

func TestCatalogReviewMissingItem(t *testing.T) {
	svc, _, _, _ := newCatalogSvc(t)
	if _, err := svc.Review("no-such-item", true); err != services.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// Edits are owner-only and pending-only.
func TestCatalogEditRules(t *testing.T) {
	svc, _, _, _ := newCatalogSvc(t)

	price := 199.0
	// not the owner
	if _, _, err := svc.Edit("u-ravi", "it-lamp-001", services.EditInput{Price: &price}); err != services.ErrForbidden {
		t.Fatalf("want ErrForbidden for non-owner, got %v", err)
	}
	// approved item, even for its owner
	if _, _, err := svc.Edit("u-asha", "it-calc-001", services.EditInput{Price: &price}); err != services.ErrForbidden {
		t.Fatalf("want ErrForbidden for approved item, got %v", err)
	}

	item, replaced, err := svc.Edit("u-asha", "it-lamp-001", services.EditInput{
		Price:  &price,
		Photos: []string{"items/new.jpg"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if item.Price != 199 {
		t.Fatalf("price not updated: %+v", item)
	}
	if len(item.Photos) != 1 || item.Photos[0] != "items/new.jpg" {
		t.Fatalf("photos not replaced: %+v", item.Photos)
	}
	if len(replaced) != 0 {
		// it-lamp-001 is seeded with no photos
		t.Fatalf("nothing should have been replaced, got %v", replaced)
	}
}

func TestCatalogDeletePendingOnly(t *testing.T) {
	svc, items, _, _ := newCatalogSvc(t)

	if _, err := svc.Delete("u-asha", "it-calc-001"); err != services.ErrForbidden {
		t.Fatalf("approved items are not deletable, got %v", err)
	}
	if _, err := svc.Delete("u-ravi", "it-lamp-001"); err != services.ErrForbidden {
		t.Fatalf("only the owner may delete, got %v", err)
	}

	if _, err := svc.Delete("u-asha", "it-lamp-001"); err != nil {
		t.Fatal(err)
	}
	if _, err := items.Get("it-lamp-001"); err == nil {
		t.Fatal("item should be gone")
	}
}

// available is computed from quantity on every read, never stored.
func TestCatalogAvailableDerived(t *testing.T) {
	svc, items, _, db := newCatalogSvc(t)

	item, err := svc.Get("it-cycle-001")
	if err != nil {
		t.Fatal(err)
	}
	if !item.Available || item.Quantity != 1 {
		t.Fatalf("want available with qty 1, got %+v", item)
	}

	ok, err := items.ReserveUnit(db, "it-cycle-001", "u-asha")
	if err != nil || !ok {
		t.Fatalf("reserve failed: %v %v", ok, err)
	}

	item, err = svc.Get("it-cycle-001")
	if err != nil {
		t.Fatal(err)
	}
	if item.Available || item.Quantity != 0 {
		t.Fatalf("want unavailable at qty 0, got %+v", item)
	}
}
