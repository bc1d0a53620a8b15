package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentService talks to the payment gateway contract: create a remote
// order reference for the frontend to open, then verify the signed
// confirmation the gateway posts back. The gateway itself is an opaque
// trusted service; only the signature is checked here.
type PaymentService struct {
	KeyID  string
	Secret []byte
}

func NewPaymentService(keyID, secret string) *PaymentService {
	return &PaymentService{KeyID: keyID, Secret: []byte(secret)}
}

// GatewayOrder mirrors the gateway's order object. Amount is in minor
// currency units.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateOrder builds the order reference the SPA hands to the gateway
// checkout widget.
func (s *PaymentService) CreateOrder(amount float64) GatewayOrder {
	return GatewayOrder{
		ID:       "order_" + uuid.NewString(),
		Amount:   int64(amount * 100),
		Currency: "INR",
		Receipt:  fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
	}
}

// VerifySignature checks the gateway confirmation: hex HMAC-SHA256 over
// "orderID|paymentID" with the shared secret, compared in constant time.
func (s *PaymentService) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, s.Secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
