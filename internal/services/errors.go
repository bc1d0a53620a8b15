package services

import "errors"

// Business-rule errors surfaced to the HTTP layer. Handlers map these to
// statuses with errors.Is, so services may wrap them freely.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrOutOfStock        = errors.New("out of stock")
	ErrSelfPurchase      = errors.New("cannot buy your own item")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrDuplicatePurchase = errors.New("already purchased")
	ErrTxnTaken          = errors.New("transaction id already used")
	ErrAlreadyRefunded   = errors.New("already refunded")
	ErrAlreadyReviewed   = errors.New("item already reviewed")
	ErrEmailTaken        = errors.New("email already registered")
	ErrBadCreds          = errors.New("invalid email or password")
)
