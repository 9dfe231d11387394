package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"acadex.dev/acadex/internal/model"
)

// memoryStore is an in-process Store used by tests. Entries round-trip
// through JSON so serialization behaves like the redis implementation.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]memoryEntry)}
}

func (s *memoryStore) Lookup(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, nil
	}

	var user model.User
	if err := json.Unmarshal(entry.raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *memoryStore) Save(ctx context.Context, user *model.User) error {
	return s.SaveTTL(ctx, user, 0)
}

func (s *memoryStore) SaveTTL(ctx context.Context, user *model.User, ttl time.Duration) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[user.ID.String()] = memoryEntry{raw: raw, expiresAt: expiresAt}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
