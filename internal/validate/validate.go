package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reSearch   = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
	reDelivery = regexp.MustCompile(`^(buyer_pickup|seller_delivery)$`)
	rePayment  = regexp.MustCompile(`^(card|upi|netbanking|wallet|cash)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 60 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a resource identifier (item/user/purchase ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// SearchTerm trims, clamps and restricts a search query to safe characters.
func SearchTerm(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reSearch.MatchString(s)
}

func DeliveryOption(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reDelivery.MatchString(s)
}

func PaymentMethod(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePayment.MatchString(s)
}

// Name validates a displayable name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}

// NonNegInt parses a non-negative integer field (price paise, quantity, years).
func NonNegInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Price parses a non-negative price.
func Price(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

// Password enforces length plus character-class requirements.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 40 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
