package storage

import (
	"context"
	"os"
	"testing"

	"lookup_bot/internal/domain"
)

// Redis tests run only against a real instance, pointed to by
// TEST_REDIS_ADDR.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(addr, os.Getenv("TEST_REDIS_PASSWORD"), 15)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		s.client.Del(ctx, keyLedger, keyBans)
		s.Close()
	})
	return s
}

func TestRedisStoreLedgerRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t)

	snap := domain.NewSnapshot()
	snap.Credits[1] = 5
	snap.Users = []int64{1}
	snap.Unlimited[1] = domain.PermanentGrant

	if err := s.SaveLedger(ctx, snap); err != nil {
		t.Fatalf("SaveLedger: %v", err)
	}
	got, err := s.LoadLedger(ctx)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if got.Credits[1] != 5 || got.Unlimited[1] != domain.PermanentGrant {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func TestRedisStoreMissingKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t)

	snap, err := s.LoadLedger(ctx)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if len(snap.Credits) != 0 {
		t.Error("missing key did not load as empty state")
	}

	bans, err := s.LoadBans(ctx)
	if err != nil {
		t.Fatalf("LoadBans: %v", err)
	}
	if bans != nil {
		t.Errorf("missing bans key loaded %v", bans)
	}
}

func TestRedisStoreBansRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t)

	if err := s.SaveBans(ctx, []int64{1, 2, 3}); err != nil {
		t.Fatalf("SaveBans: %v", err)
	}
	bans, err := s.LoadBans(ctx)
	if err != nil {
		t.Fatalf("LoadBans: %v", err)
	}
	if len(bans) != 3 {
		t.Errorf("loaded %d bans, want 3", len(bans))
	}
}
