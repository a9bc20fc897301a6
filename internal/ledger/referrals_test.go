package ledger

import (
	"context"
	"testing"
	"time"
)

func TestRecordReferralRewardsOnce(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	if err := l.Touch(ctx, 1); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	granted, err := l.RecordReferral(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RecordReferral: %v", err)
	}
	if !granted {
		t.Fatal("first referral not granted")
	}

	balance, _, _ := l.Balance(ctx, 1)
	if balance != 6 {
		t.Errorf("referrer balance = %d, want 6", balance)
	}

	// Same edge again: no reward, no new edge.
	granted, err = l.RecordReferral(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RecordReferral: %v", err)
	}
	if granted {
		t.Error("duplicate edge granted a second reward")
	}
	if balance, _, _ := l.Balance(ctx, 1); balance != 6 {
		t.Errorf("balance after duplicate = %d, want 6", balance)
	}
	if n := l.ReferralCount(1); n != 1 {
		t.Errorf("ReferralCount = %d, want 1", n)
	}
}

func TestRecordReferralSelf(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	_ = l.Touch(ctx, 1)

	granted, err := l.RecordReferral(ctx, 1, 1)
	if err != nil {
		t.Fatalf("RecordReferral: %v", err)
	}
	if granted {
		t.Error("self-referral granted")
	}
}

func TestRecordReferralUnknownReferrer(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	granted, err := l.RecordReferral(ctx, 42, 2)
	if err != nil {
		t.Fatalf("RecordReferral: %v", err)
	}
	if granted {
		t.Error("unknown referrer granted")
	}
}

func TestRecordReferralUnlimitedReferrer(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	_ = l.Touch(ctx, 1)
	if err := l.Grant(ctx, 1, time.Time{}); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	granted, err := l.RecordReferral(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RecordReferral: %v", err)
	}
	if !granted {
		t.Fatal("referral by unlimited referrer not recorded")
	}
	// The edge exists but no balance changed.
	if n := l.ReferralCount(1); n != 1 {
		t.Errorf("ReferralCount = %d, want 1", n)
	}
	if _, ok := l.credits[1]; ok {
		t.Error("unlimited referrer got a balance entry")
	}
}

func TestTopReferrersAndRank(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	for _, id := range []int64{1, 2, 3} {
		_ = l.Touch(ctx, id)
	}

	// 2 refers three users, 1 refers two, 3 refers two.
	for i, edges := range map[int64][]int64{
		1: {100, 101},
		2: {102, 103, 104},
		3: {105, 106},
	} {
		for _, referee := range edges {
			if _, err := l.RecordReferral(ctx, i, referee); err != nil {
				t.Fatalf("RecordReferral: %v", err)
			}
		}
	}

	top := l.TopReferrers(2)
	if len(top) != 2 {
		t.Fatalf("TopReferrers(2) returned %d entries", len(top))
	}
	if top[0].UserID != 2 || top[0].Count != 3 {
		t.Errorf("top entry = %+v, want user 2 with 3", top[0])
	}
	// Tie between 1 and 3 breaks by ascending id.
	if top[1].UserID != 1 {
		t.Errorf("second entry = %+v, want user 1", top[1])
	}

	if rank := l.ReferralRank(2); rank != 1 {
		t.Errorf("ReferralRank(2) = %d, want 1", rank)
	}
	if rank := l.ReferralRank(3); rank != 3 {
		t.Errorf("ReferralRank(3) = %d, want 3", rank)
	}
	if rank := l.ReferralRank(42); rank != 0 {
		t.Errorf("ReferralRank(42) = %d, want 0", rank)
	}
}
