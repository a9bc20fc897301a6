package ledger

import (
	"context"
	"sort"

	"lookup_bot/internal/domain"
)

// ReferrerCount pairs a referrer with the number of edges they own.
type ReferrerCount struct {
	UserID int64
	Count  int
}

// RecordReferral inserts the (referrer, referee) edge and rewards the
// referrer, at most once per edge. granted is false on self-referral,
// unknown referrer, or an already-present edge; none of those mutate
// anything. Unlimited referrers get the edge but no balance change.
func (l *Ledger) RecordReferral(ctx context.Context, referrerID, refereeID int64) (granted bool, err error) {
	if referrerID == refereeID {
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, known := l.users[referrerID]; !known {
		return false, nil
	}
	edge := domain.ReferralEdge{ReferrerID: referrerID, RefereeID: refereeID}
	if _, dup := l.refSet[edge]; dup {
		return false, nil
	}

	if !l.isUnlimitedLocked(ctx, referrerID) {
		l.credits[referrerID] += l.cfg.ReferralCredits
	}
	l.refSet[edge] = struct{}{}
	l.referrals = append(l.referrals, edge)
	l.stats.Referrals++
	referralsTotal.Inc()
	return true, l.persistLocked(ctx)
}

// ReferralCount returns how many users this referrer has brought in.
func (l *Ledger) ReferralCount(userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.referralCountLocked(userID)
}

func (l *Ledger) referralCountLocked(userID int64) int {
	n := 0
	for _, edge := range l.referrals {
		if edge.ReferrerID == userID {
			n++
		}
	}
	return n
}

// ReferralRank returns the user's 1-based position among all referrers
// ordered by descending count, ties broken by ascending user id so the
// ordering is deterministic. 0 means unranked.
func (l *Ledger) ReferralRank(userID int64) int {
	top := l.TopReferrers(0)
	for i, rc := range top {
		if rc.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// TopReferrers returns referrers by descending count. n <= 0 returns
// the full ranking.
func (l *Ledger) TopReferrers(n int) []ReferrerCount {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := make(map[int64]int)
	for _, edge := range l.referrals {
		counts[edge.ReferrerID]++
	}

	ranking := make([]ReferrerCount, 0, len(counts))
	for id, c := range counts {
		ranking = append(ranking, ReferrerCount{UserID: id, Count: c})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].UserID < ranking[j].UserID
	})

	if n > 0 && len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}
