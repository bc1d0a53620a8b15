package services

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"campusbay/internal/domain"
	"campusbay/internal/repos"
)

// CatalogService owns the sellable-item lifecycle: creation into pending,
// pending-only edits and deletes, the public approved catalogue, and the
// one-shot moderation transition.
type CatalogService struct {
	Items *repos.ItemRepo
	Notes *repos.NotificationRepo
}

func NewCatalogService(items *repos.ItemRepo, notes *repos.NotificationRepo) *CatalogService {
	return &CatalogService{Items: items, Notes: notes}
}

// ItemView is the JSON projection of a listing. Available is computed
// from quantity here, the single recomputation point.
type ItemView struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Price          float64              `json:"price"`
	Quantity       int                  `json:"quantity"`
	YearsUsed      int                  `json:"yearsUsed"`
	DeliveryOption string               `json:"deliveryOption"`
	Photos         []string             `json:"photos"`
	Status         string               `json:"status"`
	Available      bool                 `json:"available"`
	Seller         domain.SellerSummary `json:"seller"`
	CreatedAt      string               `json:"createdAt"`
}

func toItemView(r repos.ItemRow) ItemView {
	var photos []string
	if err := json.Unmarshal([]byte(r.PhotosJSON), &photos); err != nil || photos == nil {
		photos = []string{}
	}
	return ItemView{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Price:          r.Price,
		Quantity:       r.Quantity,
		YearsUsed:      r.YearsUsed,
		DeliveryOption: r.DeliveryOption,
		Photos:         photos,
		Status:         r.Status,
		Available:      r.Available(),
		Seller: domain.SellerSummary{
			ID:         r.SellerID,
			Name:       r.SellerName,
			Email:      r.SellerEmail,
			Photo:      r.SellerPhoto,
			Department: r.SellerDepartment,
			Year:       r.SellerYear,
		},
		CreatedAt: r.CreatedAt,
	}
}

func toItemViews(rows []repos.ItemRow) []ItemView {
	out := make([]ItemView, 0, len(rows))
	for _, r := range rows {
		out = append(out, toItemView(r))
	}
	return out
}

// NewItemInput is what a seller submits; photos are already-stored filenames.
type NewItemInput struct {
	Name           string
	Description    string
	Price          float64
	Quantity       int
	YearsUsed      int
	DeliveryOption string
	Photos         []string
}

// Create inserts a new listing in pending status, awaiting moderation.
func (s *CatalogService) Create(sellerID string, in NewItemInput) (ItemView, error) {
	photos, _ := json.Marshal(in.Photos)
	if in.Photos == nil {
		photos = []byte("[]")
	}
	it := domain.Item{
		ID:             uuid.NewString(),
		SellerID:       sellerID,
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		Quantity:       in.Quantity,
		YearsUsed:      in.YearsUsed,
		DeliveryOption: in.DeliveryOption,
		PhotosJSON:     string(photos),
		Status:         domain.ItemPending,
	}
	if err := s.Items.Create(it); err != nil {
		return ItemView{}, errors.Wrap(err, "insert item")
	}
	row, err := s.Items.Get(it.ID)
	if err != nil {
		return ItemView{}, errors.Wrap(err, "reload item")
	}
	return toItemView(row), nil
}

func (s *CatalogService) Get(id string) (ItemView, error) {
	row, err := s.Items.Get(id)
	if err == sql.ErrNoRows {
		return ItemView{}, ErrNotFound
	}
	if err != nil {
		return ItemView{}, err
	}
	return toItemView(row), nil
}

// ListApproved is the public catalogue; a caller's own listings can be
// excluded so buyers don't see their own stock.
func (s *CatalogService) ListApproved(excludeSeller string) ([]ItemView, error) {
	rows, err := s.Items.ListApproved(excludeSeller)
	if err != nil {
		return nil, err
	}
	return toItemViews(rows), nil
}

func (s *CatalogService) Search(term, excludeSeller string) ([]ItemView, error) {
	rows, err := s.Items.Search(term, excludeSeller)
	if err != nil {
		return nil, err
	}
	return toItemViews(rows), nil
}

func (s *CatalogService) ListBySeller(sellerID string) ([]ItemView, error) {
	rows, err := s.Items.ListBySeller(sellerID)
	if err != nil {
		return nil, err
	}
	return toItemViews(rows), nil
}

func (s *CatalogService) ListAll() ([]ItemView, error) {
	rows, err := s.Items.ListAll()
	if err != nil {
		return nil, err
	}
	return toItemViews(rows), nil
}

// EditInput holds optional replacements; nil fields keep current values.
type EditInput struct {
	Name           *string
	Description    *string
	Price          *float64
	Quantity       *int
	YearsUsed      *int
	DeliveryOption *string
	Photos         []string // nil = keep existing photos
}

// Edit updates a listing. Only the seller may edit, and only while the
// item is still pending review. Returns the filenames of replaced photos
// so the handler can delete them from disk.
func (s *CatalogService) Edit(requesterID, itemID string, in EditInput) (ItemView, []string, error) {
	row, err := s.Items.Get(itemID)
	if err == sql.ErrNoRows {
		return ItemView{}, nil, ErrNotFound
	}
	if err != nil {
		return ItemView{}, nil, err
	}
	if row.SellerID != requesterID {
		return ItemView{}, nil, ErrForbidden
	}
	if row.Status != domain.ItemPending {
		return ItemView{}, nil, ErrForbidden
	}

	it := row.Item
	if in.Name != nil {
		it.Name = *in.Name
	}
	if in.Description != nil {
		it.Description = *in.Description
	}
	if in.Price != nil {
		it.Price = *in.Price
	}
	if in.Quantity != nil {
		it.Quantity = *in.Quantity
	}
	if in.YearsUsed != nil {
		it.YearsUsed = *in.YearsUsed
	}
	if in.DeliveryOption != nil {
		it.DeliveryOption = *in.DeliveryOption
	}

	var replaced []string
	if in.Photos != nil {
		_ = json.Unmarshal([]byte(row.PhotosJSON), &replaced)
		b, _ := json.Marshal(in.Photos)
		it.PhotosJSON = string(b)
	}

	if err := s.Items.Update(it); err != nil {
		return ItemView{}, nil, errors.Wrap(err, "update item")
	}
	fresh, err := s.Items.Get(itemID)
	if err != nil {
		return ItemView{}, nil, errors.Wrap(err, "reload item")
	}
	return toItemView(fresh), replaced, nil
}

// Delete removes a listing. Owner-only, pending-only. Returns photo
// filenames for the handler to remove from disk.
func (s *CatalogService) Delete(requesterID, itemID string) ([]string, error) {
	row, err := s.Items.Get(itemID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if row.SellerID != requesterID {
		return nil, ErrForbidden
	}
	if row.Status != domain.ItemPending {
		return nil, ErrForbidden
	}
	var photos []string
	_ = json.Unmarshal([]byte(row.PhotosJSON), &photos)
	if err := s.Items.Delete(itemID); err != nil {
		return nil, errors.Wrap(err, "delete item")
	}
	return photos, nil
}

// Review applies the terminal pending -> approved|rejected transition and
// notifies the seller.
func (s *CatalogService) Review(itemID string, approve bool) (ItemView, error) {
	row, err := s.Items.Get(itemID)
	if err == sql.ErrNoRows {
		return ItemView{}, ErrNotFound
	}
	if err != nil {
		return ItemView{}, err
	}

	status := domain.ItemRejected
	msg := `Your item "` + row.Name + `" has been rejected. Please contact admin for more details.`
	if approve {
		status = domain.ItemApproved
		msg = `Your item "` + row.Name + `" has been approved and is now visible to other users.`
	}

	ok, err := s.Items.SetStatus(itemID, status)
	if err != nil {
		return ItemView{}, errors.Wrap(err, "set status")
	}
	if !ok {
		return ItemView{}, ErrAlreadyReviewed
	}

	note := domain.Notification{
		ID:            uuid.NewString(),
		UserID:        row.SellerID,
		Type:          "item",
		Message:       msg,
		RelatedItemID: itemID,
	}
	// The transition already happened; a lost notification is not fatal.
	_ = s.Notes.Insert(note)

	fresh, err := s.Items.Get(itemID)
	if err != nil {
		return ItemView{}, errors.Wrap(err, "reload item")
	}
	return toItemView(fresh), nil
}
