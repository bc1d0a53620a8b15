package repos

import (
	"github.com/jmoiron/sqlx"

	"campusbay/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userSelect = `SELECT id,email,name,password_hash,role,department,year,photo FROM users`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, userSelect+` WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, userSelect+` WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(u domain.User) error {
	_, err := r.DB.Exec(`
	  INSERT INTO users(id,email,name,password_hash,role,department,year,photo)
	  VALUES(?,?,?,?,?,?,?,?)
	`, u.ID, u.Email, u.Name, u.Hash, u.Role, u.Department, u.Year, u.Photo)
	return err
}

// ListNonAdmin returns every regular user, newest first (admin view).
func (r *UserRepo) ListNonAdmin() ([]domain.User, error) {
	out := []domain.User{}
	err := r.DB.Select(&out, userSelect+` WHERE role != 'ADMIN' ORDER BY created_at DESC`)
	return out, err
}

// SearchByName matches users by case-insensitive substring, non-admin
// accounts only.
func (r *UserRepo) SearchByName(name string) ([]domain.User, error) {
	out := []domain.User{}
	err := r.DB.Select(&out, userSelect+`
	  WHERE role != 'ADMIN' AND LOWER(name) LIKE LOWER(?) ORDER BY name
	`, "%"+name+"%")
	return out, err
}

func (r *UserRepo) Count() (int, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE role != 'ADMIN'`)
	return n, err
}

// DeleteCascade removes a user and their carts, listings, messages,
// notifications and board activity; ledger rows follow via the purchases
// foreign key.
func (r *UserRepo) DeleteCascade(userID string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	steps := []struct {
		q     string
		nargs int
	}{
		{`DELETE FROM cart_items WHERE user_id=?`, 1},
		{`DELETE FROM carts WHERE user_id=?`, 1},
		{`DELETE FROM items WHERE seller_id=?`, 1},
		{`DELETE FROM notifications WHERE user_id=?`, 1},
		{`DELETE FROM messages WHERE sender_id=? OR recipient_id=?`, 2},
		{`DELETE FROM request_replies WHERE responder_id=? OR request_id IN (SELECT id FROM requests WHERE requester_id=?)`, 2},
		{`DELETE FROM requests WHERE requester_id=?`, 1},
	}
	for _, s := range steps {
		args := make([]any, s.nargs)
		for i := range args {
			args[i] = userID
		}
		if _, err := tx.Exec(s.q, args...); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM users WHERE id=?`, userID); err != nil {
		return err
	}
	return tx.Commit()
}
