package repos

import (
	"github.com/jmoiron/sqlx"

	"campusbay/internal/domain"
)

type PurchaseRepo struct{ db *sqlx.DB }

func NewPurchaseRepo(db *sqlx.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

const purchaseSelect = `
  SELECT id, user_id, item_id, amount, status, payment_method, transaction_id,
         purchased_at, notes
  FROM purchases`

func (r *PurchaseRepo) Get(id string) (domain.Purchase, error) {
	var p domain.Purchase
	err := r.db.Get(&p, purchaseSelect+` WHERE id = ?`, id)
	return p, err
}

func (r *PurchaseRepo) ByTransaction(txnID string) (domain.Purchase, error) {
	var p domain.Purchase
	err := r.db.Get(&p, purchaseSelect+` WHERE transaction_id = ?`, txnID)
	return p, err
}

// HasCompleted reports whether the user holds a completed purchase of the item.
func (r *PurchaseRepo) HasCompleted(userID, itemID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `
	  SELECT COUNT(*) FROM purchases
	  WHERE user_id = ? AND item_id = ? AND status = 'completed'
	`, userID, itemID)
	return n > 0, err
}

func (r *PurchaseRepo) Insert(p domain.Purchase) error {
	_, err := r.db.Exec(`
	  INSERT INTO purchases(id,user_id,item_id,amount,status,payment_method,transaction_id,purchased_at,notes)
	  VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP,?)
	`, p.ID, p.UserID, p.ItemID, p.Amount, p.Status, p.PaymentMethod, p.TransactionID, p.Notes)
	return err
}

func (r *PurchaseRepo) ListByUser(userID string) ([]domain.Purchase, error) {
	out := []domain.Purchase{}
	err := r.db.Select(&out, purchaseSelect+`
	  WHERE user_id = ? AND status = 'completed'
	  ORDER BY datetime(purchased_at) DESC
	`, userID)
	return out, err
}

// MarkRefunded flips a non-refunded purchase to refunded and records the
// reason. Returns false if it was already refunded.
func (r *PurchaseRepo) MarkRefunded(id, reason string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE purchases SET status = 'refunded', notes = ?
	  WHERE id = ? AND status != 'refunded'
	`, reason, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *PurchaseRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM purchases WHERE id = ?`, id)
	return err
}

// AdminFilter narrows the admin listing.
type AdminFilter struct {
	Status string
	UserID string
	ItemID string
	Limit  int
	Page   int
}

func (r *PurchaseRepo) AdminList(f AdminFilter) ([]domain.Purchase, int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page < 1 {
		f.Page = 1
	}
	where := `1=1`
	args := []any{}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.UserID != "" {
		where += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.ItemID != "" {
		where += ` AND item_id = ?`
		args = append(args, f.ItemID)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM purchases WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	out := []domain.Purchase{}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	err := r.db.Select(&out, purchaseSelect+` WHERE `+where+`
	  ORDER BY datetime(purchased_at) DESC LIMIT ? OFFSET ?`, args...)
	return out, total, err
}

// StatusCount is one row of the by-status breakdown.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"n" json:"count"`
}

// TopItem aggregates completed purchases per knowledge item.
type TopItem struct {
	ItemID  string  `db:"item_id" json:"itemId"`
	Title   string  `db:"title" json:"title"`
	Count   int     `db:"n" json:"count"`
	Revenue float64 `db:"revenue" json:"revenue"`
}

type Stats struct {
	TotalPurchases     int           `json:"totalPurchases"`
	TotalRevenue       float64       `json:"totalRevenue"`
	ByStatus           []StatusCount `json:"byStatus"`
	ThisMonthPurchases int           `json:"thisMonthPurchases"`
	ThisMonthRevenue   float64       `json:"thisMonthRevenue"`
	TopItems           []TopItem     `json:"topItems"`
}

func (r *PurchaseRepo) Stats() (Stats, error) {
	var s Stats
	if err := r.db.Get(&s.TotalPurchases,
		`SELECT COUNT(*) FROM purchases WHERE status='completed'`); err != nil {
		return s, err
	}
	if err := r.db.Get(&s.TotalRevenue,
		`SELECT COALESCE(SUM(amount),0) FROM purchases WHERE status='completed'`); err != nil {
		return s, err
	}
	if err := r.db.Select(&s.ByStatus,
		`SELECT status, COUNT(*) AS n FROM purchases GROUP BY status`); err != nil {
		return s, err
	}
	if err := r.db.Get(&s.ThisMonthPurchases, `
	  SELECT COUNT(*) FROM purchases
	  WHERE status='completed' AND purchased_at >= date('now','start of month')`); err != nil {
		return s, err
	}
	if err := r.db.Get(&s.ThisMonthRevenue, `
	  SELECT COALESCE(SUM(amount),0) FROM purchases
	  WHERE status='completed' AND purchased_at >= date('now','start of month')`); err != nil {
		return s, err
	}
	err := r.db.Select(&s.TopItems, `
	  SELECT p.item_id, k.title, COUNT(*) AS n, SUM(p.amount) AS revenue
	  FROM purchases p JOIN knowledge k ON k.id = p.item_id
	  WHERE p.status='completed'
	  GROUP BY p.item_id, k.title
	  ORDER BY n DESC LIMIT 10`)
	return s, err
}
