package services_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"campusbay/internal/services"
)

func gatewaySig(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaymentCreateOrder(t *testing.T) {
	svc := services.NewPaymentService("key_test", "gw-secret")

	order := svc.CreateOrder(123.45)
	if !strings.HasPrefix(order.ID, "order_") {
		t.Fatalf("bad order id: %q", order.ID)
	}
	if order.Amount != 12345 {
		t.Fatalf("want 12345 minor units, got %d", order.Amount)
	}
	if order.Currency != "INR" || order.Receipt == "" {
		t.Fatalf("bad order: %+v", order)
	}
}

func TestPaymentVerifySignature(t *testing.T) {
	svc := services.NewPaymentService("key_test", "gw-secret")

	sig := gatewaySig("gw-secret", "order_1", "pay_1")
	if !svc.VerifySignature("order_1", "pay_1", sig) {
		t.Fatal("valid signature rejected")
	}
	if svc.VerifySignature("order_1", "pay_2", sig) {
		t.Fatal("signature for a different payment accepted")
	}
	if svc.VerifySignature("order_1", "pay_1", "deadbeef") {
		t.Fatal("forged signature accepted")
	}
	wrongSecret := gatewaySig("other-secret", "order_1", "pay_1")
	if svc.VerifySignature("order_1", "pay_1", wrongSecret) {
		t.Fatal("signature from wrong secret accepted")
	}
}
