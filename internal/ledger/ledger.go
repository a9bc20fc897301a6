// Package ledger owns the access-control and credit state of the bot:
// balances, unlimited grants, referral edges, bans, search history and
// daily counters. All of it is one consistency domain guarded by a
// single mutex, and every mutation writes through the Store before the
// lock is released. Callers never see the underlying maps.
package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lookup_bot/internal/domain"
	"lookup_bot/internal/logger"
)

// Store is the persistence port: two durable records saved as whole
// documents, the ledger snapshot and the ban set.
type Store interface {
	SaveLedger(ctx context.Context, snap *domain.Snapshot) error
	LoadLedger(ctx context.Context) (*domain.Snapshot, error)
	SaveBans(ctx context.Context, ids []int64) error
	LoadBans(ctx context.Context) ([]int64, error)
}

type Config struct {
	// DailyCredits is the balance a user starts with, assigned lazily
	// on first read of a missing balance.
	DailyCredits int64
	// ReferralCredits is the reward added to a referrer's balance per
	// distinct referral edge.
	ReferralCredits int64
	// AdminID is implicitly and permanently unlimited.
	AdminID int64
}

type Ledger struct {
	mu    sync.Mutex
	cfg   Config
	store Store
	log   *slog.Logger

	credits   map[int64]int64
	users     map[int64]struct{}
	referrals []domain.ReferralEdge
	refSet    map[domain.ReferralEdge]struct{}
	unlimited map[int64]int64
	history   map[int64][]domain.SearchRecord
	stats     domain.DailyStats
	banned    map[int64]struct{}
}

// New loads both durable records from the store and returns a ready
// ledger. Missing records mean empty state.
func New(ctx context.Context, cfg Config, store Store) (*Ledger, error) {
	snap, err := store.LoadLedger(ctx)
	if err != nil {
		return nil, err
	}
	bans, err := store.LoadBans(ctx)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		cfg:       cfg,
		store:     store,
		log:       logger.With("component", "ledger"),
		credits:   snap.Credits,
		users:     make(map[int64]struct{}, len(snap.Users)),
		referrals: snap.Referrals,
		refSet:    make(map[domain.ReferralEdge]struct{}, len(snap.Referrals)),
		unlimited: snap.Unlimited,
		history:   snap.SearchHistory,
		stats:     snap.DailyStats,
		banned:    make(map[int64]struct{}, len(bans)),
	}
	for _, id := range snap.Users {
		l.users[id] = struct{}{}
	}
	for _, edge := range snap.Referrals {
		l.refSet[edge] = struct{}{}
	}
	for _, id := range bans {
		l.banned[id] = struct{}{}
	}

	l.log.Info("ledger loaded",
		"users", len(l.users),
		"unlimited", len(l.unlimited),
		"banned", len(l.banned),
		"referrals", len(l.referrals),
	)
	return l, nil
}

// snapshotLocked builds the serialized form of everything but the ban
// set. Caller holds the mutex.
func (l *Ledger) snapshotLocked() *domain.Snapshot {
	snap := &domain.Snapshot{
		Credits:       make(map[int64]int64, len(l.credits)),
		Users:         make([]int64, 0, len(l.users)),
		Referrals:     make([]domain.ReferralEdge, len(l.referrals)),
		Unlimited:     make(map[int64]int64, len(l.unlimited)),
		SearchHistory: make(map[int64][]domain.SearchRecord, len(l.history)),
		DailyStats:    l.stats,
		LastUpdated:   time.Now(),
	}
	for id, c := range l.credits {
		snap.Credits[id] = c
	}
	for id := range l.users {
		snap.Users = append(snap.Users, id)
	}
	copy(snap.Referrals, l.referrals)
	for id, exp := range l.unlimited {
		snap.Unlimited[id] = exp
	}
	for id, records := range l.history {
		snap.SearchHistory[id] = append([]domain.SearchRecord(nil), records...)
	}
	return snap
}

// persistLocked writes the ledger snapshot through the store. A failed
// write leaves the in-memory mutation in place; the caller decides
// whether that is fatal. Caller holds the mutex.
func (l *Ledger) persistLocked(ctx context.Context) error {
	if err := l.store.SaveLedger(ctx, l.snapshotLocked()); err != nil {
		l.log.Error("failed to persist ledger snapshot", "error", err)
		return err
	}
	return nil
}

// persistBansLocked writes the ban set through its own record.
func (l *Ledger) persistBansLocked(ctx context.Context) error {
	ids := make([]int64, 0, len(l.banned))
	for id := range l.banned {
		ids = append(ids, id)
	}
	if err := l.store.SaveBans(ctx, ids); err != nil {
		l.log.Error("failed to persist ban set", "error", err)
		return err
	}
	return nil
}
