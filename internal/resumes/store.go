package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"resurate/internal/platform"
	"resurate/internal/shared/telemetry"
)

// Store reads and writes records in each user's key-value namespace.
type Store struct {
	KV platform.KV
}

func key(id string) string {
	return KeyPrefix + id
}

// Save writes the record under resume:<id>, replacing any previous value.
func (s *Store) Save(ctx context.Context, userID string, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record id is required", ErrInvalidInput)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.KV.Set(ctx, userID, key(rec.ID), string(raw)); err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID, id string) (Record, error) {
	raw, err := s.KV.Get(ctx, userID, key(id))
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load record %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return rec, nil
}

// List returns the user's records, most recently written first. Entries that
// fail to decode are logged and skipped.
func (s *Store) List(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := s.KV.List(ctx, userID, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		var rec Record
		if err := json.Unmarshal([]byte(e.Value), &rec); err != nil {
			telemetry.Warn("resume.record_decode_failed", map[string]any{
				"user_id": userID,
				"key":     e.Key,
				"error":   err,
			})
			continue
		}
		if rec.ID == "" {
			rec.ID = strings.TrimPrefix(e.Key, KeyPrefix)
		}
		out = append(out, Entry{Record: rec, UpdatedAt: e.UpdatedAt})
	}
	return out, nil
}
