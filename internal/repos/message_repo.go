package repos

import (
	"github.com/jmoiron/sqlx"

	"campusbay/internal/domain"
)

type MessageRepo struct{ db *sqlx.DB }

func NewMessageRepo(db *sqlx.DB) *MessageRepo { return &MessageRepo{db: db} }

func (r *MessageRepo) Insert(m domain.Message) error {
	_, err := r.db.Exec(`
	  INSERT INTO messages(id,sender_id,recipient_id,body,read,created_at)
	  VALUES(?,?,?,?,0,CURRENT_TIMESTAMP)
	`, m.ID, m.SenderID, m.RecipientID, m.Body)
	return err
}

// Conversation returns the two-way message history between two users,
// oldest first.
func (r *MessageRepo) Conversation(userID, peerID string) ([]domain.Message, error) {
	out := []domain.Message{}
	err := r.db.Select(&out, `
	  SELECT id, sender_id, recipient_id, body, read, created_at
	  FROM messages
	  WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
	  ORDER BY datetime(created_at) ASC
	`, userID, peerID, peerID, userID)
	return out, err
}

// MarkRead marks everything the peer sent to the user as read.
func (r *MessageRepo) MarkRead(userID, peerID string) error {
	_, err := r.db.Exec(`
	  UPDATE messages SET read = 1
	  WHERE recipient_id = ? AND sender_id = ? AND read = 0
	`, userID, peerID)
	return err
}

// PartnerRow summarises one conversation for the inbox listing.
type PartnerRow struct {
	PeerID   string `db:"peer_id" json:"peerId"`
	PeerName string `db:"peer_name" json:"peerName"`
	Unread   int    `db:"unread" json:"unread"`
	LastAt   string `db:"last_at" json:"lastAt"`
}

func (r *MessageRepo) Partners(userID string) ([]PartnerRow, error) {
	out := []PartnerRow{}
	err := r.db.Select(&out, `
	  SELECT m.peer_id, u.name AS peer_name,
	         SUM(CASE WHEN m.dir = 'in' AND m.read = 0 THEN 1 ELSE 0 END) AS unread,
	         MAX(m.created_at) AS last_at
	  FROM (
	    SELECT recipient_id AS peer_id, 'out' AS dir, read, created_at FROM messages WHERE sender_id = ?
	    UNION ALL
	    SELECT sender_id AS peer_id, 'in' AS dir, read, created_at FROM messages WHERE recipient_id = ?
	  ) AS m JOIN users u ON u.id = m.peer_id
	  GROUP BY peer_id, u.name
	  ORDER BY last_at DESC
	`, userID, userID)
	return out, err
}
