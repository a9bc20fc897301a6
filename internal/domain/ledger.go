package domain

import "time"

// ReferralEdge is a unique (referrer, referee) pair. The pair is the
// idempotence key: one reward per edge, ever.
type ReferralEdge struct {
	ReferrerID int64 `json:"referrer_id"`
	RefereeID  int64 `json:"referee_id"`
}

// SearchRecord is one past query, kept for display only.
type SearchRecord struct {
	Number    string    `json:"number"`
	Timestamp time.Time `json:"timestamp"`
}

// DailyStats are process-wide counters. The ledger never resets them;
// any reset cadence is an operator concern.
type DailyStats struct {
	Searches  int64 `json:"searches"`
	NewUsers  int64 `json:"new_users"`
	Referrals int64 `json:"referrals"`
}

// PermanentGrant is the expiry sentinel for a grant that never expires.
const PermanentGrant int64 = 0

// Snapshot is the whole-document serialized form of the ledger state,
// minus the ban set which lives in its own record.
type Snapshot struct {
	Credits   map[int64]int64 `json:"credits"`
	Users     []int64         `json:"users"`
	Referrals []ReferralEdge  `json:"referrals"`
	// Unlimited maps user id to expiry as unix seconds; PermanentGrant
	// marks a grant that never expires.
	Unlimited     map[int64]int64          `json:"unlimited"`
	SearchHistory map[int64][]SearchRecord `json:"search_history"`
	DailyStats    DailyStats               `json:"daily_stats"`
	LastUpdated   time.Time                `json:"last_updated"`
}

// NewSnapshot returns an empty snapshot with all maps allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Credits:       make(map[int64]int64),
		Unlimited:     make(map[int64]int64),
		SearchHistory: make(map[int64][]SearchRecord),
	}
}
