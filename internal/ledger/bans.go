package ledger

import (
	"context"
	"sort"
)

// Ban adds the user to the ban set. Re-banning is a no-op beyond the
// logged reason; only membership is durable.
func (l *Ledger) Ban(ctx context.Context, userID int64, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.banned[userID]; ok {
		l.log.Info("user already banned", "user_id", userID, "reason", reason)
		return nil
	}
	l.banned[userID] = struct{}{}
	l.log.Info("user banned", "user_id", userID, "reason", reason)
	return l.persistBansLocked(ctx)
}

// Unban removes the user from the ban set and reports whether they
// were banned at all.
func (l *Ledger) Unban(ctx context.Context, userID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.banned[userID]; !ok {
		return false, nil
	}
	delete(l.banned, userID)
	return true, l.persistBansLocked(ctx)
}

// IsBanned is a pure lookup.
func (l *Ledger) IsBanned(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.banned[userID]
	return ok
}

// BannedList returns the ban set sorted by user id.
func (l *Ledger) BannedList() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]int64, 0, len(l.banned))
	for id := range l.banned {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
