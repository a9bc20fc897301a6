package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lookup_bot/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyLedger = "lookupbot:ledger"
	keyBans   = "lookupbot:bans"
)

// RedisStore keeps the ledger snapshot and the ban set as two JSON
// documents, each overwritten whole on save.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) SaveLedger(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger snapshot: %w", err)
	}
	return s.client.Set(ctx, keyLedger, data, 0).Err()
}

func (s *RedisStore) LoadLedger(ctx context.Context) (*domain.Snapshot, error) {
	data, err := s.client.Get(ctx, keyLedger).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	snap := domain.NewSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger snapshot: %w", err)
	}
	return snap, nil
}

func (s *RedisStore) SaveBans(ctx context.Context, ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal ban set: %w", err)
	}
	return s.client.Set(ctx, keyBans, data, 0).Err()
}

func (s *RedisStore) LoadBans(ctx context.Context) ([]int64, error) {
	data, err := s.client.Get(ctx, keyBans).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ban set: %w", err)
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ban set: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
