package ledger

import (
	"context"
	"time"

	"lookup_bot/internal/domain"
)

// historyLimit bounds the per-user search log; the oldest entries are
// dropped first.
const historyLimit = 50

// AppendSearch records a committed search and bumps the search counter.
func (l *Ledger) AppendSearch(ctx context.Context, userID int64, number string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := append(l.history[userID], domain.SearchRecord{
		Number:    number,
		Timestamp: time.Now(),
	})
	if len(records) > historyLimit {
		records = records[len(records)-historyLimit:]
	}
	l.history[userID] = records
	l.stats.Searches++
	searchesTotal.Inc()
	return l.persistLocked(ctx)
}

// ClearHistory empties the user's search log.
func (l *Ledger) ClearHistory(ctx context.Context, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.history[userID]) == 0 {
		return nil
	}
	l.history[userID] = nil
	return l.persistLocked(ctx)
}

// RecentSearches returns up to n entries, most recent first.
func (l *Ledger) RecentSearches(userID int64, n int) []domain.SearchRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.history[userID]
	if n > len(records) {
		n = len(records)
	}

	out := make([]domain.SearchRecord, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		out = append(out, records[i])
	}
	return out
}
