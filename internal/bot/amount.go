package bot

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for text that is not a positive number.
var ErrInvalidAmount = errors.New("invalid amount")

// amountPattern accepts plain decimals only. Exponent notation is refused so
// a short message cannot expand into an enormous big.Int on comparison.
var amountPattern = regexp.MustCompile(`^\d{1,15}(\.\d{1,8})?$`)

// ParseAmount converts user-typed text such as "50", "100.25" or "$12" into
// a positive decimal.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "$")
	if !amountPattern.MatchString(text) {
		return decimal.Zero, ErrInvalidAmount
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}
