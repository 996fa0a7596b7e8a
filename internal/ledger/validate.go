package ledger

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/udhaar/ledger/internal/errs"
)

// Field length limits carried over from the storage schema. Limits
// count characters, not bytes.
const (
	MaxShopNameLen     = 100
	MaxCustomerNameLen = 50
	MaxPhoneLen        = 15
)

// AmountScale is the number of fractional digits a monetary amount may carry.
const AmountScale = 2

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateShop checks client-supplied shop fields. Identity is not
// checked here; it is assigned by the service on create.
func ValidateShop(s Shop) error {
	if strings.TrimSpace(s.Name) == "" {
		return errs.Field("name", "is required")
	}
	if utf8.RuneCountInString(s.Name) > MaxShopNameLen {
		return errs.Field("name", fmt.Sprintf("must be at most %d characters", MaxShopNameLen))
	}
	return validateContact(s.Email, s.Phone)
}

// ValidateCustomer checks client-supplied customer fields.
func ValidateCustomer(c Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return errs.Field("name", "is required")
	}
	if utf8.RuneCountInString(c.Name) > MaxCustomerNameLen {
		return errs.Field("name", fmt.Sprintf("must be at most %d characters", MaxCustomerNameLen))
	}
	return validateContact(c.Email, c.Phone)
}

func validateContact(email, phone string) error {
	if email != "" && !emailRe.MatchString(email) {
		return errs.Field("email", "is not a valid email address")
	}
	if utf8.RuneCountInString(phone) > MaxPhoneLen {
		return errs.Field("phone", fmt.Sprintf("must be at most %d characters", MaxPhoneLen))
	}
	return nil
}

// ValidateAmount enforces the monetary invariant: strictly positive with
// at most two fractional digits.
func ValidateAmount(d decimal.Decimal) error {
	if d.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", errs.ErrInvalidAmount)
	}
	if !d.Equal(d.Truncate(AmountScale)) {
		return fmt.Errorf("%w: amount must have at most %d decimal places", errs.ErrInvalidAmount, AmountScale)
	}
	return nil
}

// ParseAmount parses and validates a client-supplied amount string.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount is not a valid decimal", errs.ErrInvalidAmount)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
