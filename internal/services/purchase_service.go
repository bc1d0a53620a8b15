package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"campusbay/internal/domain"
	"campusbay/internal/repos"
)

// PurchaseService records one-to-one (user, content-item) completed
// purchase facts for paid study material and supports admin refunds.
type PurchaseService struct {
	Purchases *repos.PurchaseRepo
	Knowledge *repos.KnowledgeRepo
}

func NewPurchaseService(purchases *repos.PurchaseRepo, knowledge *repos.KnowledgeRepo) *PurchaseService {
	return &PurchaseService{Purchases: purchases, Knowledge: knowledge}
}

// CheckPurchased returns false, not an error, when the item is missing.
func (s *PurchaseService) CheckPurchased(userID, itemID string) (bool, error) {
	if _, err := s.Knowledge.Get(itemID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return s.Purchases.HasCompleted(userID, itemID)
}

// Create records a completed purchase. The amount is the item's price at
// creation time; the gateway amount is trusted upstream (signature check).
func (s *PurchaseService) Create(userID, itemID, transactionID, paymentMethod string) (domain.Purchase, error) {
	item, err := s.Knowledge.Get(itemID)
	if err == sql.ErrNoRows {
		return domain.Purchase{}, ErrNotFound
	}
	if err != nil {
		return domain.Purchase{}, err
	}

	exists, err := s.Purchases.HasCompleted(userID, itemID)
	if err != nil {
		return domain.Purchase{}, err
	}
	if exists {
		return domain.Purchase{}, ErrDuplicatePurchase
	}

	if transactionID == "" {
		transactionID = "TXN-" + uuid.NewString()
	}
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	p := domain.Purchase{
		ID:            uuid.NewString(),
		UserID:        userID,
		ItemID:        itemID,
		Amount:        item.Price,
		Status:        domain.PurchaseCompleted,
		PaymentMethod: paymentMethod,
		TransactionID: transactionID,
	}
	if err := s.Purchases.Insert(p); err != nil {
		return domain.Purchase{}, insertError(err)
	}
	return s.Purchases.Get(p.ID)
}

// insertError distinguishes the two unique indexes on the ledger. The
// (user,item) index closes the check-then-insert window; the transaction
// index rejects a reused caller-supplied id. Anything else is a storage
// fault and stays a plain error.
func insertError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "purchases.user_id"):
		return errors.Wrap(ErrDuplicatePurchase, msg)
	case strings.Contains(msg, "purchases.transaction_id"):
		return errors.Wrap(ErrTxnTaken, msg)
	default:
		return errors.Wrap(err, "insert purchase")
	}
}

// BulkError reports one failed entry of a bulk purchase.
type BulkError struct {
	ItemID string `json:"itemId"`
	Error  string `json:"error"`
}

// BulkResult is a partial-success outcome; errors never abort the batch.
type BulkResult struct {
	Purchases   []domain.Purchase `json:"purchases"`
	Errors      []BulkError       `json:"errors,omitempty"`
	TotalAmount float64           `json:"totalAmount"`
}

// BulkCreate records purchases for each item independently. Per-item
// failures land in the result's error list and never abort the batch.
func (s *PurchaseService) BulkCreate(userID string, itemIDs []string, paymentMethod string) (BulkResult, error) {
	res := BulkResult{Purchases: []domain.Purchase{}}
	prefix := "BULK-" + uuid.NewString()
	for i, itemID := range itemIDs {
		txn := fmt.Sprintf("%s-%d", prefix, i+1)
		p, err := s.Create(userID, itemID, txn, paymentMethod)
		if err != nil {
			res.Errors = append(res.Errors, BulkError{ItemID: itemID, Error: bulkReason(err)})
			continue
		}
		res.Purchases = append(res.Purchases, p)
		res.TotalAmount += p.Amount
	}
	return res, nil
}

func bulkReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "Item not found"
	case errors.Is(err, ErrDuplicatePurchase):
		return "Already purchased"
	default:
		return "Could not record purchase"
	}
}

// Get enforces that only the owner or an admin may read a purchase.
func (s *PurchaseService) Get(requesterID, requesterRole, purchaseID string) (domain.Purchase, error) {
	p, err := s.Purchases.Get(purchaseID)
	if err == sql.ErrNoRows {
		return domain.Purchase{}, ErrNotFound
	}
	if err != nil {
		return domain.Purchase{}, err
	}
	if p.UserID != requesterID && requesterRole != "ADMIN" {
		return domain.Purchase{}, ErrForbidden
	}
	return p, nil
}

func (s *PurchaseService) ListMine(userID string) ([]domain.Purchase, error) {
	return s.Purchases.ListByUser(userID)
}

// Refund is admin-only and rejects double refunds. No monetary reversal
// is performed; the ledger only records the state change.
func (s *PurchaseService) Refund(purchaseID, reason string) (domain.Purchase, error) {
	if _, err := s.Purchases.Get(purchaseID); err != nil {
		if err == sql.ErrNoRows {
			return domain.Purchase{}, ErrNotFound
		}
		return domain.Purchase{}, err
	}
	if reason == "" {
		reason = "Refunded by admin"
	}
	ok, err := s.Purchases.MarkRefunded(purchaseID, reason)
	if err != nil {
		return domain.Purchase{}, err
	}
	if !ok {
		return domain.Purchase{}, ErrAlreadyRefunded
	}
	return s.Purchases.Get(purchaseID)
}

// Delete: owners may delete their own not-completed purchases; admins any.
func (s *PurchaseService) Delete(requesterID, requesterRole, purchaseID string) error {
	p, err := s.Purchases.Get(purchaseID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if p.UserID != requesterID && requesterRole != "ADMIN" {
		return ErrForbidden
	}
	if p.Status == domain.PurchaseCompleted && requesterRole != "ADMIN" {
		return ErrForbidden
	}
	return s.Purchases.Delete(purchaseID)
}

func (s *PurchaseService) AdminList(f repos.AdminFilter) ([]domain.Purchase, int, error) {
	return s.Purchases.AdminList(f)
}

func (s *PurchaseService) Stats() (repos.Stats, error) {
	return s.Purchases.Stats()
}

// VerifyByTransaction looks a purchase up by its gateway transaction id.
func (s *PurchaseService) VerifyByTransaction(txnID string) (domain.Purchase, error) {
	p, err := s.Purchases.ByTransaction(txnID)
	if err == sql.ErrNoRows {
		return domain.Purchase{}, ErrNotFound
	}
	return p, err
}
