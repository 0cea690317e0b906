package ledger

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInMemoryLedger_NewUserStartsEmpty(t *testing.T) {
	l := NewInMemory()

	if bal := l.Balance(42); !bal.IsZero() {
		t.Fatalf("expected zero balance, got %s", bal)
	}
	if txs := l.Transactions(42, 5); len(txs) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(txs))
	}
}

func TestInMemoryLedger_Scenario(t *testing.T) {
	l := NewInMemory()
	const user = int64(1001)

	if got := FormatAmount(l.Balance(user)); got != "0.00" {
		t.Fatalf("expected 0.00, got %s", got)
	}

	res := l.Fund(user, amt("100"))
	if !res.Success || FormatAmount(res.NewBalance) != "100.00" {
		t.Fatalf("fund failed: %+v", res)
	}
	if res.Message != "Wallet funded with $100.00. New balance: $100.00" {
		t.Fatalf("unexpected fund message %q", res.Message)
	}

	res = l.Withdraw(user, amt("30"))
	if !res.Success || FormatAmount(res.NewBalance) != "70.00" {
		t.Fatalf("withdraw failed: %+v", res)
	}
	if res.Message != "Successfully withdrew $30.00. New balance: $70.00" {
		t.Fatalf("unexpected withdraw message %q", res.Message)
	}

	res = l.Withdraw(user, amt("1000"))
	if res.Success {
		t.Fatal("expected overdraft to be rejected")
	}
	if res.Message != "insufficient funds" || !errors.Is(res.Err, ErrInsufficientFunds) {
		t.Fatalf("unexpected rejection: %+v", res)
	}
	if FormatAmount(res.NewBalance) != "70.00" {
		t.Fatalf("expected unchanged balance 70.00, got %s", FormatAmount(res.NewBalance))
	}

	txs := l.Transactions(user, 5)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Type != TypeWithdraw || !txs[0].Amount.Equal(amt("30")) {
		t.Fatalf("expected withdraw(30) first, got %+v", txs[0])
	}
	if txs[1].Type != TypeFund || !txs[1].Amount.Equal(amt("100")) {
		t.Fatalf("expected fund(100) second, got %+v", txs[1])
	}
	if txs[0].Description != "Withdrew $30.00 from wallet" {
		t.Fatalf("unexpected description %q", txs[0].Description)
	}
	if txs[1].Description != "Wallet funded with $100.00" {
		t.Fatalf("unexpected description %q", txs[1].Description)
	}
}

func TestInMemoryLedger_RejectsNonPositiveAmounts(t *testing.T) {
	l := NewInMemory()
	const user = int64(7)
	l.Fund(user, amt("12.50"))

	cases := []struct {
		name string
		op   func(decimal.Decimal) Result
		in   string
	}{
		{"fund negative", func(a decimal.Decimal) Result { return l.Fund(user, a) }, "-5"},
		{"fund zero", func(a decimal.Decimal) Result { return l.Fund(user, a) }, "0"},
		{"withdraw negative", func(a decimal.Decimal) Result { return l.Withdraw(user, a) }, "-1"},
		{"withdraw zero", func(a decimal.Decimal) Result { return l.Withdraw(user, a) }, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.op(amt(tc.in))
			if res.Success {
				t.Fatal("expected rejection")
			}
			if res.Message != "amount must be greater than 0" || !errors.Is(res.Err, ErrInvalidAmount) {
				t.Fatalf("unexpected rejection: %+v", res)
			}
			if !res.NewBalance.Equal(amt("12.50")) {
				t.Fatalf("expected current balance 12.50 in result, got %s", res.NewBalance)
			}
			if got := l.Balance(user); !got.Equal(amt("12.50")) {
				t.Fatalf("balance mutated to %s", got)
			}
			if n := len(l.Transactions(user, 10)); n != 1 {
				t.Fatalf("history length changed to %d", n)
			}
		})
	}
}

func TestInMemoryLedger_TransactionsLimitAndIdempotentRead(t *testing.T) {
	l := NewInMemory()
	const user = int64(3)
	for i := 1; i <= 8; i++ {
		l.Fund(user, decimal.NewFromInt(int64(i)))
	}

	txs := l.Transactions(user, 3)
	if len(txs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(txs))
	}
	for i, want := range []int64{8, 7, 6} {
		if !txs[i].Amount.Equal(decimal.NewFromInt(want)) {
			t.Fatalf("entry %d: expected %d, got %s", i, want, txs[i].Amount)
		}
	}

	again := l.Transactions(user, 3)
	for i := range txs {
		if txs[i].ID != again[i].ID {
			t.Fatalf("repeated read differs at %d: %s vs %s", i, txs[i].ID, again[i].ID)
		}
	}

	if n := len(l.Transactions(user, 0)); n != DefaultHistoryLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultHistoryLimit, n)
	}
	if n := len(l.Transactions(user, 100)); n != 8 {
		t.Fatalf("expected full history of 8, got %d", n)
	}
}

func TestInMemoryLedger_ReturnedHistoryIsACopy(t *testing.T) {
	l := NewInMemory()
	l.Fund(1, amt("5"))

	txs := l.Transactions(1, 5)
	txs[0].Amount = amt("999")

	if got := l.Transactions(1, 5)[0].Amount; !got.Equal(amt("5")) {
		t.Fatalf("history mutated through returned slice: %s", got)
	}
}

func TestInMemoryLedger_BalanceMatchesSuccessfulOperations(t *testing.T) {
	l := NewInMemory()
	const user = int64(99)
	rng := rand.New(rand.NewSource(1))

	expected := decimal.Zero
	for i := 0; i < 500; i++ {
		amount := decimal.New(int64(rng.Intn(20000)-2000), -2)
		var res Result
		if rng.Intn(2) == 0 {
			res = l.Fund(user, amount)
			if res.Success {
				expected = expected.Add(amount)
			}
		} else {
			res = l.Withdraw(user, amount)
			if res.Success {
				expected = expected.Sub(amount)
			}
		}
		if res.NewBalance.IsNegative() {
			t.Fatalf("balance went negative: %s", res.NewBalance)
		}
	}

	if got := l.Balance(user); !got.Equal(expected) {
		t.Fatalf("expected balance %s, got %s", expected, got)
	}

	sum := decimal.Zero
	for _, tx := range l.Transactions(user, 1000) {
		if !tx.Amount.IsPositive() {
			t.Fatalf("non-positive transaction amount %s", tx.Amount)
		}
		if tx.Type == TypeFund {
			sum = sum.Add(tx.Amount)
		} else {
			sum = sum.Sub(tx.Amount)
		}
	}
	if !sum.Equal(expected) {
		t.Fatalf("history sum %s does not match balance %s", sum, expected)
	}
}

func TestInMemoryLedger_UniqueIDsAtSameInstant(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewInMemory(WithClock(func() time.Time { return fixed }))

	for i := 0; i < 1000; i++ {
		l.Fund(5, amt("1"))
	}

	seen := make(map[string]struct{})
	for _, tx := range l.Transactions(5, 1000) {
		if _, dup := seen[tx.ID]; dup {
			t.Fatalf("duplicate transaction id %s", tx.ID)
		}
		seen[tx.ID] = struct{}{}
		if !tx.Timestamp.Equal(fixed) {
			t.Fatalf("unexpected timestamp %s", tx.Timestamp)
		}
	}
}

func TestInMemoryLedger_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	l := NewInMemory()
	l.Fund(1, amt("1000"))
	impl := l.(*inMemoryLedger)

	const workers = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := l.Withdraw(1, amt("30")); res.Success {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 33 {
		t.Fatalf("expected 33 successful withdrawals, got %d", succeeded)
	}
	if got := impl.wallets[1].balance; !got.Equal(amt("10")) {
		t.Fatalf("expected remaining balance 10, got %s", got)
	}
}

func TestInMemoryLedger_ResultCarriesTransaction(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	l := NewInMemory(WithClock(func() time.Time { return at }))

	res := l.Fund(5, amt("12.5"))
	history := l.Transactions(5, 1)
	if res.Transaction.ID == "" || res.Transaction.ID != history[0].ID {
		t.Fatalf("expected result to carry %s, got %+v", history[0].ID, res.Transaction)
	}
	if !res.Transaction.Timestamp.Equal(at) || res.Transaction.Type != TypeFund {
		t.Fatalf("unexpected transaction %+v", res.Transaction)
	}

	failed := l.Withdraw(5, amt("100"))
	if failed.Success || failed.Transaction.ID != "" {
		t.Fatalf("failed withdraw must not carry a transaction: %+v", failed)
	}
}
