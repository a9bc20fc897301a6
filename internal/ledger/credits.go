package ledger

import "context"

// balanceLocked returns the user's balance, lazily initializing it to
// the configured daily default. Reports whether persistence is needed.
func (l *Ledger) balanceLocked(userID int64) (int64, bool) {
	if c, ok := l.credits[userID]; ok {
		return c, false
	}
	l.credits[userID] = l.cfg.DailyCredits
	return l.cfg.DailyCredits, true
}

// Balance returns the current balance. Unlimited users report
// unlimited=true and the numeric value is meaningless for them.
func (l *Ledger) Balance(ctx context.Context, userID int64) (balance int64, unlimited bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isUnlimitedLocked(ctx, userID) {
		return 0, true, nil
	}

	balance, dirty := l.balanceLocked(userID)
	if dirty {
		err = l.persistLocked(ctx)
	}
	return balance, false, err
}

// AuthorizeDebit checks that a debit of one credit would be allowed. It
// never decrements: the decrement is deferred to CommitDebit once the
// guarded action's outcome is known.
func (l *Ledger) AuthorizeDebit(ctx context.Context, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isUnlimitedLocked(ctx, userID) {
		return nil
	}

	balance, dirty := l.balanceLocked(userID)
	if dirty {
		if err := l.persistLocked(ctx); err != nil {
			return err
		}
	}
	if balance <= 0 {
		return ErrNoCredit
	}
	return nil
}

// CommitDebit decrements the balance by exactly one. Call only after a
// successful guarded action on a previously authorized debit.
func (l *Ledger) CommitDebit(ctx context.Context, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.credits[userID]--
	return l.persistLocked(ctx)
}

// Refund restores one credit after an authorized action failed. An
// authorize-fail-refund sequence nets to zero balance change.
func (l *Ledger) Refund(ctx context.Context, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.credits[userID]++
	refundsTotal.Inc()
	return l.persistLocked(ctx)
}

// AddCredits is the admin grant. A missing balance starts from zero,
// not from the daily default. Returns the new balance.
func (l *Ledger) AddCredits(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.credits[userID] += amount
	return l.credits[userID], l.persistLocked(ctx)
}
