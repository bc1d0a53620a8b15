package repos

import (
	"github.com/jmoiron/sqlx"

	"campusbay/internal/domain"
)

type ItemRepo struct{ db *sqlx.DB }

func NewItemRepo(db *sqlx.DB) *ItemRepo { return &ItemRepo{db: db} }

// ItemRow joins the listing with its seller summary for API responses and
// cart-line snapshots.
type ItemRow struct {
	domain.Item
	SellerName       string `db:"seller_name"`
	SellerEmail      string `db:"seller_email"`
	SellerPhoto      string `db:"seller_photo"`
	SellerDepartment string `db:"seller_department"`
	SellerYear       string `db:"seller_year"`
}

const itemSelect = `
  SELECT i.id, i.seller_id, i.name, i.description, i.price, i.quantity,
         i.years_used, i.delivery_option, i.photos_json, i.status,
         i.created_at, COALESCE(i.updated_at,'') AS updated_at,
         u.name AS seller_name, u.email AS seller_email, u.photo AS seller_photo,
         u.department AS seller_department, u.year AS seller_year
  FROM items i JOIN users u ON u.id = i.seller_id`

func (r *ItemRepo) Get(id string) (ItemRow, error) {
	return GetItemTx(r.db, id)
}

// GetItemTx works inside or outside a transaction.
func GetItemTx(q sqlx.Queryer, id string) (ItemRow, error) {
	var it ItemRow
	err := sqlx.Get(q, &it, itemSelect+` WHERE i.id = ?`, id)
	return it, err
}

func (r *ItemRepo) Create(it domain.Item) error {
	_, err := r.db.Exec(`
	  INSERT INTO items(id,seller_id,name,description,price,quantity,years_used,delivery_option,photos_json,status,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, it.ID, it.SellerID, it.Name, it.Description, it.Price, it.Quantity, it.YearsUsed, it.DeliveryOption, it.PhotosJSON, it.Status)
	return err
}

// Update rewrites the editable fields. Status guards live in the service.
func (r *ItemRepo) Update(it domain.Item) error {
	_, err := r.db.Exec(`
	  UPDATE items SET name=?, description=?, price=?, quantity=?, years_used=?,
	         delivery_option=?, photos_json=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, it.Name, it.Description, it.Price, it.Quantity, it.YearsUsed, it.DeliveryOption, it.PhotosJSON, it.ID)
	return err
}

func (r *ItemRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM items WHERE id=?`, id)
	return err
}

// ListApproved returns the public catalogue, optionally excluding a
// seller's own listings.
func (r *ItemRepo) ListApproved(excludeSeller string) ([]ItemRow, error) {
	var out []ItemRow
	q := itemSelect + ` WHERE i.status = 'approved'`
	args := []any{}
	if excludeSeller != "" {
		q += ` AND i.seller_id != ?`
		args = append(args, excludeSeller)
	}
	q += ` ORDER BY i.created_at DESC`
	err := r.db.Select(&out, q, args...)
	return out, err
}

// Search matches approved listings by name or delivery option.
func (r *ItemRepo) Search(term, excludeSeller string) ([]ItemRow, error) {
	var out []ItemRow
	q := itemSelect + ` WHERE i.status = 'approved'
	  AND (LOWER(i.name) LIKE ? OR LOWER(i.delivery_option) LIKE ?)`
	pat := "%" + term + "%"
	args := []any{pat, pat}
	if excludeSeller != "" {
		q += ` AND i.seller_id != ?`
		args = append(args, excludeSeller)
	}
	q += ` ORDER BY i.created_at DESC`
	err := r.db.Select(&out, q, args...)
	return out, err
}

func (r *ItemRepo) ListBySeller(sellerID string) ([]ItemRow, error) {
	var out []ItemRow
	err := r.db.Select(&out, itemSelect+` WHERE i.seller_id = ? ORDER BY i.created_at DESC`, sellerID)
	return out, err
}

// ListAll returns every listing regardless of status (admin view).
func (r *ItemRepo) ListAll() ([]ItemRow, error) {
	var out []ItemRow
	err := r.db.Select(&out, itemSelect+` ORDER BY i.created_at DESC`)
	return out, err
}

// SetStatus performs the one-shot pending -> approved|rejected transition.
// Returns false when the item was not pending (already reviewed).
func (r *ItemRepo) SetStatus(id, status string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE items SET status=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=? AND status='pending'
	`, status, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ReserveUnit atomically subtracts one unit if the listing is approved, in
// stock and not owned by the requester. Conditional update: the WHERE
// clause is the whole guarantee that no unit is reserved twice.
func (r *ItemRepo) ReserveUnit(e sqlx.Execer, itemID, requesterID string) (bool, error) {
	res, err := e.Exec(`
	  UPDATE items SET quantity = quantity - 1, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND quantity > 0 AND status = 'approved' AND seller_id != ?
	`, itemID, requesterID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ReleaseUnits returns reserved units to stock. No upper bound: the only
// caller passes the reserved line quantity. Returns false when the item
// row no longer exists.
func (r *ItemRepo) ReleaseUnits(e sqlx.Execer, itemID string, n int) (bool, error) {
	res, err := e.Exec(`
	  UPDATE items SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, n, itemID)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// ItemStatusCount is one row of the per-status listing breakdown.
type ItemStatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"n" json:"count"`
}

func (r *ItemRepo) CountByStatus() ([]ItemStatusCount, error) {
	out := []ItemStatusCount{}
	err := r.db.Select(&out, `SELECT status, COUNT(*) AS n FROM items GROUP BY status`)
	return out, err
}

// Qty returns the current stock count.
func (r *ItemRepo) Qty(itemID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT quantity FROM items WHERE id = ?`, itemID)
	return qty, err
}
