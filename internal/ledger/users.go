package ledger

import "context"

// Touch registers a user on first observed interaction. Known users are
// a no-op. Users are never deleted.
func (l *Ledger) Touch(ctx context.Context, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[userID]; ok {
		return nil
	}
	l.users[userID] = struct{}{}
	l.stats.NewUsers++
	newUsersTotal.Inc()
	return l.persistLocked(ctx)
}

// Knows reports whether the user has ever interacted with the bot.
func (l *Ledger) Knows(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.users[userID]
	return ok
}

// UserIDs returns a copy of the known-user set for broadcast fan-out.
func (l *Ledger) UserIDs() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]int64, 0, len(l.users))
	for id := range l.users {
		ids = append(ids, id)
	}
	return ids
}
