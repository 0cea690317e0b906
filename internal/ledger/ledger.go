package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is reported when a fund or withdraw amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be greater than 0")

	// ErrInsufficientFunds occurs when a withdrawal exceeds the wallet balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// DefaultHistoryLimit is the number of transactions returned when no positive limit is given.
const DefaultHistoryLimit = 5

// Type is the direction of a wallet transaction.
type Type string

const (
	TypeFund     Type = "fund"
	TypeWithdraw Type = "withdraw"
)

// Transaction is an immutable entry in a wallet history. Amount is always
// positive; the direction is carried by Type.
type Transaction struct {
	ID          string
	Type        Type
	Amount      decimal.Decimal
	Timestamp   time.Time
	Description string
}

// Result captures the outcome of a balance mutation. Validation failures are
// reported through Success and Message, with Err holding the matching sentinel.
// Transaction is the recorded entry and is zero when the mutation failed.
type Result struct {
	Success     bool
	NewBalance  decimal.Decimal
	Message     string
	Err         error
	Transaction Transaction
}

// Ledger is the per-user wallet store. Wallets for unseen user identifiers are
// created on first access with a zero balance and an empty history.
type Ledger interface {
	Balance(userID int64) decimal.Decimal
	Fund(userID int64, amount decimal.Decimal) Result
	Withdraw(userID int64, amount decimal.Decimal) Result
	// Transactions returns up to limit entries, newest first.
	Transactions(userID int64, limit int) []Transaction
}

// FormatAmount renders a monetary amount with exactly two decimal places.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
