package ledger

import (
	"time"

	"lookup_bot/internal/domain"
)

// Stats is an aggregate snapshot for the admin surfaces.
type Stats struct {
	TotalUsers     int               `json:"total_users"`
	TotalReferrals int               `json:"total_referrals"`
	UnlimitedUsers int               `json:"unlimited_users"`
	BannedUsers    int               `json:"banned_users"`
	TotalSearches  int64             `json:"total_searches"`
	CreditsUsed    int64             `json:"credits_used"`
	Daily          domain.DailyStats `json:"daily"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// Stats computes the aggregate view. CreditsUsed is the distance of
// every non-unlimited known user from the daily default; admin top-ups
// can push a user's contribution negative.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	var used int64
	for id := range l.users {
		if _, ok := l.unlimited[id]; ok {
			continue
		}
		used += l.cfg.DailyCredits - l.credits[id]
	}

	return Stats{
		TotalUsers:     len(l.users),
		TotalReferrals: len(l.referrals),
		UnlimitedUsers: len(l.unlimited),
		BannedUsers:    len(l.banned),
		TotalSearches:  l.stats.Searches,
		CreditsUsed:    used,
		Daily:          l.stats,
		GeneratedAt:    time.Now(),
	}
}
