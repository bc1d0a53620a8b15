package repos

import (
	"github.com/jmoiron/sqlx"

	"campusbay/internal/domain"
)

type KnowledgeRepo struct{ db *sqlx.DB }

func NewKnowledgeRepo(db *sqlx.DB) *KnowledgeRepo { return &KnowledgeRepo{db: db} }

const knowledgeSelect = `
  SELECT id, owner_id, title, description, subject, price, is_paid,
         file_url, preview_url, downloads, created_at
  FROM knowledge`

func (r *KnowledgeRepo) Get(id string) (domain.Knowledge, error) {
	var k domain.Knowledge
	err := r.db.Get(&k, knowledgeSelect+` WHERE id = ?`, id)
	return k, err
}

func (r *KnowledgeRepo) Create(k domain.Knowledge) error {
	_, err := r.db.Exec(`
	  INSERT INTO knowledge(id,owner_id,title,description,subject,price,is_paid,file_url,preview_url,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, k.ID, k.OwnerID, k.Title, k.Description, k.Subject, k.Price, k.IsPaid, k.FileURL, k.PreviewURL)
	return err
}

// List returns materials, optionally filtered by subject or a text match
// on the title.
func (r *KnowledgeRepo) List(subject, q string) ([]domain.Knowledge, error) {
	out := []domain.Knowledge{}
	where := `1=1`
	args := []any{}
	if subject != "" {
		where += ` AND subject = ?`
		args = append(args, subject)
	}
	if q != "" {
		where += ` AND LOWER(title) LIKE ?`
		args = append(args, "%"+q+"%")
	}
	err := r.db.Select(&out, knowledgeSelect+` WHERE `+where+` ORDER BY created_at DESC`, args...)
	return out, err
}

func (r *KnowledgeRepo) ListByOwner(ownerID string) ([]domain.Knowledge, error) {
	out := []domain.Knowledge{}
	err := r.db.Select(&out, knowledgeSelect+` WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	return out, err
}

func (r *KnowledgeRepo) IncrementDownloads(id string) error {
	_, err := r.db.Exec(`UPDATE knowledge SET downloads = downloads + 1 WHERE id = ?`, id)
	return err
}

func (r *KnowledgeRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM knowledge WHERE id = ?`, id)
	return err
}
