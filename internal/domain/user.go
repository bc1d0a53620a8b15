package domain

type User struct {
	ID         string `db:"id" json:"id"`
	Email      string `db:"email" json:"email"`
	Name       string `db:"name" json:"name"`
	Hash       string `db:"password_hash" json:"-"`
	Role       string `db:"role" json:"role"`
	Department string `db:"department" json:"department,omitempty"`
	Year       string `db:"year" json:"year,omitempty"`
	Photo      string `db:"photo" json:"photo,omitempty"`
}

// SellerSummary is the denormalized seller block snapshotted into cart lines.
type SellerSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Photo      string `json:"photo,omitempty"`
	Department string `json:"department,omitempty"`
	Year       string `json:"year,omitempty"`
}
