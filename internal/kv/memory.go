package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"resurate/internal/platform"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]platform.KVEntry
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]platform.KVEntry),
		now:  time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, namespace, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.data[namespace][key]
	if !ok {
		return "", platform.ErrNotFound
	}
	return entry.Value, nil
}

func (s *MemoryStore) Set(ctx context.Context, namespace, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(namespace, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string]platform.KVEntry)
		s.data[namespace] = ns
	}
	ns[key] = platform.KVEntry{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	return nil
}

// List returns entries whose key starts with prefix, most recently updated first.
func (s *MemoryStore) List(ctx context.Context, namespace, prefix string) ([]platform.KVEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]platform.KVEntry, 0)
	for key, entry := range s.data[namespace] {
		if strings.HasPrefix(key, prefix) {
			out = append(out, entry)
		}
	}
	s.mu.RUnlock()
	sortEntries(out)
	return out, nil
}

func (s *MemoryStore) Flush(ctx context.Context, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, namespace)
	return nil
}

func sortEntries(entries []platform.KVEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
		}
		return entries[i].Key < entries[j].Key
	})
}

var _ platform.KV = (*MemoryStore)(nil)
