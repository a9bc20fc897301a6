package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lookup_bot/internal/domain"
)

// FileStore persists the ledger snapshot and the ban set as two JSON
// files. Writes go to a temp file first and are renamed into place, so a
// crash mid-write never leaves a truncated document behind.
type FileStore struct {
	dataPath string
	bansPath string
}

func NewFileStore(dataPath, bansPath string) *FileStore {
	return &FileStore{dataPath: dataPath, bansPath: bansPath}
}

func (s *FileStore) SaveLedger(_ context.Context, snap *domain.Snapshot) error {
	return writeJSON(s.dataPath, snap)
}

func (s *FileStore) LoadLedger(_ context.Context) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()
	if err := readJSON(s.dataPath, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *FileStore) SaveBans(_ context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	return writeJSON(s.bansPath, ids)
}

func (s *FileStore) LoadBans(_ context.Context) ([]int64, error) {
	var ids []int64
	if err := readJSON(s.bansPath, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *FileStore) Ping(_ context.Context) error {
	dir := filepath.Dir(s.dataPath)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// readJSON decodes path into v. A missing file is not an error: v is
// left untouched and the caller starts from empty state.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
