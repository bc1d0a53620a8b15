package services

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"campusbay/internal/domain"
	"campusbay/internal/repos"
)

// CartService mediates between a buyer's intent and the item stock. Each
// mutation folds the stock update and the cart-line change into a single
// transaction so total units (in stock + reserved in carts) stay constant
// under concurrent requests.
type CartService struct {
	DB    *sqlx.DB
	Items *repos.ItemRepo
	Carts *repos.CartRepo
}

func NewCartService(db *sqlx.DB, items *repos.ItemRepo, carts *repos.CartRepo) *CartService {
	return &CartService{DB: db, Items: items, Carts: carts}
}

// AddResult carries the refreshed cart plus the item's remaining stock.
type AddResult struct {
	Cart              domain.Cart `json:"cart"`
	RemainingQuantity int         `json:"updatedQuantity"`
}

// Add reserves one unit of the item into the user's cart.
// Ownership is checked before the decrement, so a rejected self-purchase
// never costs a unit.
func (s *CartService) Add(userID, itemID string) (AddResult, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return AddResult{}, errors.Wrap(err, "begin add-to-cart")
	}
	defer func() { _ = tx.Rollback() }()

	it, err := repos.GetItemTx(tx, itemID)
	if err == sql.ErrNoRows {
		return AddResult{}, ErrNotFound
	}
	if err != nil {
		return AddResult{}, errors.Wrap(err, "load item")
	}
	if it.SellerID == userID {
		return AddResult{}, ErrSelfPurchase
	}
	if it.Status != domain.ItemApproved || it.Quantity <= 0 {
		return AddResult{}, ErrOutOfStock
	}

	ok, err := s.Items.ReserveUnit(tx, itemID, userID)
	if err != nil {
		return AddResult{}, errors.Wrap(err, "reserve unit")
	}
	if !ok {
		// Lost the race to the last unit.
		return AddResult{}, ErrOutOfStock
	}

	if err := s.Carts.Ensure(tx, userID); err != nil {
		return AddResult{}, errors.Wrap(err, "ensure cart")
	}
	line := repos.CartLineRow{
		UserID:           userID,
		ItemID:           it.ID,
		Qty:              1,
		Name:             it.Name,
		Price:            it.Price,
		YearsUsed:        it.YearsUsed,
		DeliveryOption:   it.DeliveryOption,
		PhotosJSON:       it.PhotosJSON,
		SellerID:         it.SellerID,
		SellerName:       it.SellerName,
		SellerEmail:      it.SellerEmail,
		SellerPhoto:      it.SellerPhoto,
		SellerDepartment: it.SellerDepartment,
		SellerYear:       it.SellerYear,
	}
	if err := s.Carts.UpsertLine(tx, line); err != nil {
		return AddResult{}, errors.Wrap(err, "upsert cart line")
	}

	lines, err := repos.CartLinesTx(tx, userID)
	if err != nil {
		return AddResult{}, errors.Wrap(err, "reload cart")
	}
	if err := tx.Commit(); err != nil {
		return AddResult{}, errors.Wrap(err, "commit add-to-cart")
	}
	return AddResult{
		Cart:              toCart(userID, lines),
		RemainingQuantity: it.Quantity - 1,
	}, nil
}

// Remove drops the entire reserved line for the item and returns its units
// to stock. If the underlying item was deleted in the meantime the release
// is skipped; the reservation is simply discarded.
func (s *CartService) Remove(userID, itemID string) (domain.Cart, bool, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Cart{}, false, errors.Wrap(err, "begin remove-from-cart")
	}
	defer func() { _ = tx.Rollback() }()

	line, err := s.Carts.Line(tx, userID, itemID)
	if err == sql.ErrNoRows {
		return domain.Cart{}, false, ErrNotFound
	}
	if err != nil {
		return domain.Cart{}, false, errors.Wrap(err, "load cart line")
	}

	if err := s.Carts.DeleteLine(tx, userID, itemID); err != nil {
		return domain.Cart{}, false, errors.Wrap(err, "delete cart line")
	}
	released, err := s.Items.ReleaseUnits(tx, itemID, line.Qty)
	if err != nil {
		return domain.Cart{}, false, errors.Wrap(err, "release units")
	}

	lines, err := repos.CartLinesTx(tx, userID)
	if err != nil {
		return domain.Cart{}, false, errors.Wrap(err, "reload cart")
	}
	if err := tx.Commit(); err != nil {
		return domain.Cart{}, false, errors.Wrap(err, "commit remove-from-cart")
	}
	return toCart(userID, lines), released, nil
}

// Get returns the user's cart; a user with no cart gets {items: []},
// never an error.
func (s *CartService) Get(userID string) (domain.Cart, error) {
	lines, err := s.Carts.Lines(userID)
	if err != nil {
		return domain.Cart{}, errors.Wrap(err, "load cart")
	}
	return toCart(userID, lines), nil
}

// Checkout computes the total, builds the order summary for the payment
// collaborator and deletes the cart in the same transaction. Stock was
// already reserved at add time, so no catalog mutation happens here.
func (s *CartService) Checkout(userID, paymentMethod string) (domain.OrderSummary, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.OrderSummary{}, errors.Wrap(err, "begin checkout")
	}
	defer func() { _ = tx.Rollback() }()

	lines, err := repos.CartLinesTx(tx, userID)
	if err != nil {
		return domain.OrderSummary{}, errors.Wrap(err, "load cart")
	}
	if len(lines) == 0 {
		return domain.OrderSummary{}, ErrEmptyCart
	}

	cart := toCart(userID, lines)
	total := 0.0
	for _, l := range cart.Items {
		total += l.Price * float64(l.Quantity)
	}

	if err := s.Carts.Drop(tx, userID); err != nil {
		return domain.OrderSummary{}, errors.Wrap(err, "drop cart")
	}
	if err := tx.Commit(); err != nil {
		return domain.OrderSummary{}, errors.Wrap(err, "commit checkout")
	}

	return domain.OrderSummary{
		UserID:        userID,
		Items:         cart.Items,
		TotalAmount:   total,
		PaymentMethod: paymentMethod,
		Date:          time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func toCart(userID string, lines []repos.CartLineRow) domain.Cart {
	items := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		var photos []string
		if err := json.Unmarshal([]byte(l.PhotosJSON), &photos); err != nil || photos == nil {
			photos = []string{}
		}
		items = append(items, domain.CartLine{
			ItemID:         l.ItemID,
			Name:           l.Name,
			Price:          l.Price,
			Quantity:       l.Qty,
			YearsUsed:      l.YearsUsed,
			DeliveryOption: l.DeliveryOption,
			Photos:         photos,
			Seller: domain.SellerSummary{
				ID:         l.SellerID,
				Name:       l.SellerName,
				Email:      l.SellerEmail,
				Photo:      l.SellerPhoto,
				Department: l.SellerDepartment,
				Year:       l.SellerYear,
			},
		})
	}
	return domain.Cart{UserID: userID, Items: items}
}
