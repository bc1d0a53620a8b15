package repos

import (
	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartLineRow is the persisted add-time snapshot plus reserved quantity.
type CartLineRow struct {
	UserID           string  `db:"user_id"`
	ItemID           string  `db:"item_id"`
	Qty              int     `db:"qty"`
	Name             string  `db:"name"`
	Price            float64 `db:"price"`
	YearsUsed        int     `db:"years_used"`
	DeliveryOption   string  `db:"delivery_option"`
	PhotosJSON       string  `db:"photos_json"`
	SellerID         string  `db:"seller_id"`
	SellerName       string  `db:"seller_name"`
	SellerEmail      string  `db:"seller_email"`
	SellerPhoto      string  `db:"seller_photo"`
	SellerDepartment string  `db:"seller_department"`
	SellerYear       string  `db:"seller_year"`
}

// Ensure creates the user's cart row if it does not exist yet.
func (r *CartRepo) Ensure(e sqlx.Execer, userID string) error {
	_, err := e.Exec(`
	  INSERT INTO carts(user_id, updated_at) VALUES(?, CURRENT_TIMESTAMP)
	  ON CONFLICT(user_id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP
	`, userID)
	return err
}

// UpsertLine adds a new snapshot line or increments the reserved quantity
// of an existing one.
func (r *CartRepo) UpsertLine(e sqlx.Execer, line CartLineRow) error {
	_, err := e.Exec(`
	  INSERT INTO cart_items(user_id,item_id,qty,name,price,years_used,delivery_option,photos_json,
	                         seller_id,seller_name,seller_email,seller_photo,seller_department,seller_year,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	  ON CONFLICT(user_id,item_id) DO UPDATE
	  SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, line.UserID, line.ItemID, line.Qty, line.Name, line.Price, line.YearsUsed,
		line.DeliveryOption, line.PhotosJSON, line.SellerID, line.SellerName,
		line.SellerEmail, line.SellerPhoto, line.SellerDepartment, line.SellerYear)
	return err
}

func (r *CartRepo) Lines(userID string) ([]CartLineRow, error) {
	return CartLinesTx(r.db, userID)
}

// CartLinesTx works inside or outside a transaction.
func CartLinesTx(q sqlx.Queryer, userID string) ([]CartLineRow, error) {
	out := []CartLineRow{}
	err := sqlx.Select(q, &out, `
	  SELECT user_id, item_id, qty, name, price, years_used, delivery_option, photos_json,
	         seller_id, seller_name, seller_email, seller_photo, seller_department, seller_year
	  FROM cart_items WHERE user_id = ?
	`, userID)
	return out, err
}

// Line fetches one reserved line inside the caller's transaction.
func (r *CartRepo) Line(q sqlx.Queryer, userID, itemID string) (CartLineRow, error) {
	var line CartLineRow
	err := sqlx.Get(q, &line, `
	  SELECT user_id, item_id, qty, name, price, years_used, delivery_option, photos_json,
	         seller_id, seller_name, seller_email, seller_photo, seller_department, seller_year
	  FROM cart_items WHERE user_id = ? AND item_id = ?
	`, userID, itemID)
	return line, err
}

func (r *CartRepo) DeleteLine(e sqlx.Execer, userID, itemID string) error {
	_, err := e.Exec(`DELETE FROM cart_items WHERE user_id = ? AND item_id = ?`, userID, itemID)
	return err
}

// Drop deletes the cart and all its lines.
func (r *CartRepo) Drop(e sqlx.Execer, userID string) error {
	if _, err := e.Exec(`DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return err
	}
	_, err := e.Exec(`DELETE FROM carts WHERE user_id = ?`, userID)
	return err
}
