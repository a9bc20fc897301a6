package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestBalanceLazyDefault(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)

	balance, unlimited, err := l.Balance(ctx, 10)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if unlimited || balance != 3 {
		t.Errorf("first read = %d, %v; want 3, false", balance, unlimited)
	}

	// The lazy init must have persisted.
	saves, _ := store.counts()
	if saves == 0 {
		t.Error("lazy initialization did not persist")
	}

	// A second read returns the stored value without re-initializing.
	balance, _, err = l.Balance(ctx, 10)
	if err != nil || balance != 3 {
		t.Errorf("second read = %d, %v; want 3, nil", balance, err)
	}
}

func TestAuthorizeDebitNeverDecrements(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	for i := 0; i < 5; i++ {
		if err := l.AuthorizeDebit(ctx, 10); err != nil {
			t.Fatalf("AuthorizeDebit #%d: %v", i, err)
		}
	}

	balance, _, _ := l.Balance(ctx, 10)
	if balance != 3 {
		t.Errorf("balance after repeated authorize = %d, want 3", balance)
	}
}

func TestAuthorizeDebitExhausted(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	for i := 0; i < 3; i++ {
		if err := l.AuthorizeDebit(ctx, 10); err != nil {
			t.Fatalf("AuthorizeDebit: %v", err)
		}
		if err := l.CommitDebit(ctx, 10); err != nil {
			t.Fatalf("CommitDebit: %v", err)
		}
	}

	if err := l.AuthorizeDebit(ctx, 10); !errors.Is(err, ErrNoCredit) {
		t.Errorf("AuthorizeDebit on empty balance = %v, want ErrNoCredit", err)
	}
}

func TestRefundRestoresBalance(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	if err := l.AuthorizeDebit(ctx, 10); err != nil {
		t.Fatalf("AuthorizeDebit: %v", err)
	}
	if err := l.CommitDebit(ctx, 10); err != nil {
		t.Fatalf("CommitDebit: %v", err)
	}
	if err := l.Refund(ctx, 10); err != nil {
		t.Fatalf("Refund: %v", err)
	}

	balance, _, _ := l.Balance(ctx, 10)
	if balance != 3 {
		t.Errorf("balance after debit+refund = %d, want 3", balance)
	}
}

func TestAddCredits(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	if _, err := l.AddCredits(ctx, 10, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("AddCredits(0) = %v, want ErrInvalidAmount", err)
	}
	if _, err := l.AddCredits(ctx, 10, -5); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("AddCredits(-5) = %v, want ErrInvalidAmount", err)
	}

	// A user never seen before starts from zero, not the daily default.
	newBalance, err := l.AddCredits(ctx, 10, 50)
	if err != nil {
		t.Fatalf("AddCredits: %v", err)
	}
	if newBalance != 50 {
		t.Errorf("new balance = %d, want 50", newBalance)
	}

	balance, _, _ := l.Balance(ctx, 10)
	if balance != 50 {
		t.Errorf("Balance after AddCredits = %d, want 50", balance)
	}
}

func TestConcurrentDebits(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l, err := New(ctx, Config{DailyCredits: 100, ReferralCredits: 3, AdminID: 999}, store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if err := l.AuthorizeDebit(ctx, 10); err == nil {
				_ = l.CommitDebit(ctx, 10)
			}
		}()
	}
	wg.Wait()

	balance, _, _ := l.Balance(ctx, 10)
	if balance != 100-workers {
		t.Errorf("balance after %d concurrent debits = %d, want %d", workers, balance, 100-workers)
	}
}
