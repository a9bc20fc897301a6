package ledger

import (
	"context"
	"sort"
	"time"

	"lookup_bot/internal/domain"
)

// GrantInfo describes one unlimited grant for admin display.
type GrantInfo struct {
	UserID    int64
	Permanent bool
	ExpiresAt time.Time
}

// Grant gives the user unlimited access. A zero expiresAt means the
// grant is permanent. Any prior grant is overwritten.
func (l *Ledger) Grant(ctx context.Context, userID int64, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiresAt.IsZero() {
		l.unlimited[userID] = domain.PermanentGrant
	} else {
		l.unlimited[userID] = expiresAt.Unix()
	}
	return l.persistLocked(ctx)
}

// Revoke removes the grant if present and reports whether one existed.
func (l *Ledger) Revoke(ctx context.Context, userID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.unlimited[userID]; !ok {
		return false, nil
	}
	delete(l.unlimited, userID)
	return true, l.persistLocked(ctx)
}

// IsUnlimited reports whether the user currently bypasses credit
// checks. Reading an expired grant deletes it and persists the
// deletion: expiry is discovered on access, never swept in background.
func (l *Ledger) IsUnlimited(ctx context.Context, userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isUnlimitedLocked(ctx, userID)
}

func (l *Ledger) isUnlimitedLocked(ctx context.Context, userID int64) bool {
	if l.cfg.AdminID != 0 && userID == l.cfg.AdminID {
		return true
	}

	expiry, ok := l.unlimited[userID]
	if !ok {
		return false
	}
	if expiry == domain.PermanentGrant {
		return true
	}
	if time.Now().Unix() < expiry {
		return true
	}

	// Lazy reap: the expired grant is gone from this read onward.
	delete(l.unlimited, userID)
	if err := l.persistLocked(ctx); err != nil {
		l.log.Error("failed to persist grant expiry", "user_id", userID, "error", err)
	}
	return false
}

// GrantExpiry returns the grant for display. exists is false when the
// user has no entry, admin included; permanent grants report a zero
// expiry time.
func (l *Ledger) GrantExpiry(userID int64) (expiresAt time.Time, permanent, exists bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiry, ok := l.unlimited[userID]
	if !ok {
		return time.Time{}, false, false
	}
	if expiry == domain.PermanentGrant {
		return time.Time{}, true, true
	}
	return time.Unix(expiry, 0), false, true
}

// UnlimitedList returns all grants sorted by user id.
func (l *Ledger) UnlimitedList() []GrantInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	grants := make([]GrantInfo, 0, len(l.unlimited))
	for id, expiry := range l.unlimited {
		info := GrantInfo{UserID: id, Permanent: expiry == domain.PermanentGrant}
		if !info.Permanent {
			info.ExpiresAt = time.Unix(expiry, 0)
		}
		grants = append(grants, info)
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].UserID < grants[j].UserID })
	return grants
}
