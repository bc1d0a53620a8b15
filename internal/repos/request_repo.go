package repos

import (
	"github.com/jmoiron/sqlx"

	"campusbay/internal/domain"
)

type RequestRepo struct{ db *sqlx.DB }

func NewRequestRepo(db *sqlx.DB) *RequestRepo { return &RequestRepo{db: db} }

// RequestRow carries the requester's public identity alongside the ask.
type RequestRow struct {
	domain.Request
	RequesterName  string `db:"requester_name" json:"requesterName"`
	RequesterEmail string `db:"requester_email" json:"requesterEmail"`
}

type ReplyRow struct {
	domain.RequestReply
	ResponderName  string `db:"responder_name" json:"responderName"`
	ResponderEmail string `db:"responder_email" json:"responderEmail"`
}

type RequestView struct {
	RequestRow
	Replies []ReplyRow `json:"replies"`
}

func (r *RequestRepo) Insert(req domain.Request) error {
	_, err := r.db.Exec(`
	  INSERT INTO requests(id,requester_id,title,description,created_at)
	  VALUES(?,?,?,?,CURRENT_TIMESTAMP)
	`, req.ID, req.RequesterID, req.Title, req.Description)
	return err
}

func (r *RequestRepo) Get(id string) (domain.Request, error) {
	var req domain.Request
	err := r.db.Get(&req, `
	  SELECT id, requester_id, title, description, created_at
	  FROM requests WHERE id = ?
	`, id)
	return req, err
}

func (r *RequestRepo) AddReply(rep domain.RequestReply) error {
	_, err := r.db.Exec(`
	  INSERT INTO request_replies(id,request_id,responder_id,body,created_at)
	  VALUES(?,?,?,?,CURRENT_TIMESTAMP)
	`, rep.ID, rep.RequestID, rep.ResponderID, rep.Body)
	return err
}

// ListAll returns every request newest first, replies oldest first.
func (r *RequestRepo) ListAll() ([]RequestView, error) {
	return r.list(``)
}

func (r *RequestRepo) ListByRequester(userID string) ([]RequestView, error) {
	return r.list(`WHERE r.requester_id = ?`, userID)
}

func (r *RequestRepo) list(where string, args ...any) ([]RequestView, error) {
	rows := []RequestRow{}
	err := r.db.Select(&rows, `
	  SELECT r.id, r.requester_id, r.title, r.description, r.created_at,
	         u.name AS requester_name, u.email AS requester_email
	  FROM requests r JOIN users u ON u.id = r.requester_id
	  `+where+`
	  ORDER BY datetime(r.created_at) DESC, r.id
	`, args...)
	if err != nil {
		return nil, err
	}

	out := make([]RequestView, 0, len(rows))
	idx := map[string]int{}
	for i, row := range rows {
		out = append(out, RequestView{RequestRow: row, Replies: []ReplyRow{}})
		idx[row.ID] = i
	}

	replies := []ReplyRow{}
	err = r.db.Select(&replies, `
	  SELECT p.id, p.request_id, p.responder_id, p.body, p.created_at,
	         u.name AS responder_name, u.email AS responder_email
	  FROM request_replies p JOIN users u ON u.id = p.responder_id
	  ORDER BY datetime(p.created_at) ASC, p.id
	`)
	if err != nil {
		return nil, err
	}
	for _, rep := range replies {
		if i, ok := idx[rep.RequestID]; ok {
			out[i].Replies = append(out[i].Replies, rep)
		}
	}
	return out, nil
}
