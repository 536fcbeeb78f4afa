package store

import (
	"context"
	"sync"
	"time"
)

// MemoryKV is an in-memory KV used in tests and as a degraded fallback
// when Redis is unavailable.
type MemoryKV struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	sets  map[string]map[string]struct{}
}

type memoryItem struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		items: make(map[string]memoryItem),
		sets:  make(map[string]map[string]struct{}),
	}
}

func (s *MemoryKV) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return "", ErrNotFound
	}
	return item.value, nil
}

func (s *MemoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = item
	s.mu.Unlock()
	return nil
}

func (s *MemoryKV) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	delete(s.sets, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryKV) AddToSet(_ context.Context, key, member string) error {
	s.mu.Lock()
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	set[member] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (s *MemoryKV) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]string, 0, len(s.sets[key]))
	for member := range s.sets[key] {
		members = append(members, member)
	}
	return members, nil
}
