package repos

import (
	"github.com/jmoiron/sqlx"

	"campusbay/internal/domain"
)

type NotificationRepo struct{ db *sqlx.DB }

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) Insert(n domain.Notification) error {
	_, err := r.db.Exec(`
	  INSERT INTO notifications(id,user_id,type,message,related_item_id,read,created_at)
	  VALUES(?,?,?,?,?,0,CURRENT_TIMESTAMP)
	`, n.ID, n.UserID, n.Type, n.Message, n.RelatedItemID)
	return err
}

func (r *NotificationRepo) ListByUser(userID string) ([]domain.Notification, error) {
	out := []domain.Notification{}
	err := r.db.Select(&out, `
	  SELECT id, user_id, type, message, related_item_id, read, created_at
	  FROM notifications WHERE user_id = ?
	  ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

func (r *NotificationRepo) UnreadCount(userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID)
	return n, err
}

// MarkRead flips one notification; false when it doesn't belong to the user.
func (r *NotificationRepo) MarkRead(id, userID string) (bool, error) {
	res, err := r.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
