package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type wallet struct {
	userID  int64
	balance decimal.Decimal
	// history is kept oldest first; readers walk it backwards.
	history []Transaction
}

type inMemoryLedger struct {
	mu      sync.Mutex
	wallets map[int64]*wallet
	ids     *IDGenerator
	now     func() time.Time
}

// Option customises an in-memory ledger.
type Option func(*inMemoryLedger)

// WithClock overrides the time source used to stamp transactions.
func WithClock(now func() time.Time) Option {
	return func(l *inMemoryLedger) {
		l.now = now
	}
}

// WithIDGenerator replaces the transaction identifier source.
func WithIDGenerator(ids *IDGenerator) Option {
	return func(l *inMemoryLedger) {
		l.ids = ids
	}
}

// NewInMemory creates a process-resident ledger. A single mutex guards every
// wallet so the read-modify-write of a balance is atomic per call.
func NewInMemory(opts ...Option) Ledger {
	l := &inMemoryLedger{
		wallets: make(map[int64]*wallet),
		ids:     NewIDGenerator(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// walletFor is the get-or-insert on the wallet map: an unseen user gets a
// zero-balance wallet with no history. Callers must hold l.mu.
func (l *inMemoryLedger) walletFor(userID int64) *wallet {
	w, ok := l.wallets[userID]
	if !ok {
		w = &wallet{userID: userID, balance: decimal.Zero}
		l.wallets[userID] = w
	}
	return w
}

func (l *inMemoryLedger) Balance(userID int64) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.walletFor(userID).balance
}

func (l *inMemoryLedger) Fund(userID int64, amount decimal.Decimal) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.walletFor(userID)
	if !amount.IsPositive() {
		return rejected(w, ErrInvalidAmount)
	}

	w.balance = w.balance.Add(amount)
	tx := l.record(w, TypeFund, amount, fmt.Sprintf("Wallet funded with $%s", FormatAmount(amount)))

	return Result{
		Success:     true,
		NewBalance:  w.balance,
		Message:     fmt.Sprintf("Wallet funded with $%s. New balance: $%s", FormatAmount(amount), FormatAmount(w.balance)),
		Transaction: tx,
	}
}

func (l *inMemoryLedger) Withdraw(userID int64, amount decimal.Decimal) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.walletFor(userID)
	if !amount.IsPositive() {
		return rejected(w, ErrInvalidAmount)
	}
	if amount.GreaterThan(w.balance) {
		return rejected(w, ErrInsufficientFunds)
	}

	w.balance = w.balance.Sub(amount)
	tx := l.record(w, TypeWithdraw, amount, fmt.Sprintf("Withdrew $%s from wallet", FormatAmount(amount)))

	return Result{
		Success:     true,
		NewBalance:  w.balance,
		Message:     fmt.Sprintf("Successfully withdrew $%s. New balance: $%s", FormatAmount(amount), FormatAmount(w.balance)),
		Transaction: tx,
	}
}

func (l *inMemoryLedger) Transactions(userID int64, limit int) []Transaction {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.walletFor(userID).history
	if limit > len(history) {
		limit = len(history)
	}

	out := make([]Transaction, 0, limit)
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history[i])
	}
	return out
}

func (l *inMemoryLedger) record(w *wallet, kind Type, amount decimal.Decimal, description string) Transaction {
	now := l.now()
	tx := Transaction{
		ID:          l.ids.Next(now),
		Type:        kind,
		Amount:      amount,
		Timestamp:   now,
		Description: description,
	}
	w.history = append(w.history, tx)
	return tx
}

// rejected reports a failed mutation together with the wallet's actual balance.
func rejected(w *wallet, err error) Result {
	return Result{
		Success:    false,
		NewBalance: w.balance,
		Message:    err.Error(),
		Err:        err,
	}
}
