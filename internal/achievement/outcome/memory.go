// Package outcome keeps request outcomes for callers polling by token.
package outcome

import (
	"context"
	"sync"
	"time"

	"soulbound/internal/achievement/models"
	"soulbound/internal/resolution"
	"soulbound/pkg/platform/sentinel"
)

type entry struct {
	outcome   models.Outcome
	expiresAt time.Time
}

// InMemoryStore holds outcomes in process. Expired entries are dropped
// lazily on read and on write.
type InMemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[resolution.Token]entry
	now     func() time.Time
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		ttl:     ttl,
		entries: make(map[resolution.Token]entry),
		now:     time.Now,
	}
}

func (s *InMemoryStore) Put(_ context.Context, o models.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for token, e := range s.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.entries, token)
		}
	}
	var expires time.Time
	if s.ttl > 0 {
		expires = now.Add(s.ttl)
	}
	s.entries[o.Token] = entry{outcome: o, expiresAt: expires}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, token resolution.Token) (models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return models.Outcome{}, sentinel.ErrNotFound
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, token)
		return models.Outcome{}, sentinel.ErrNotFound
	}
	return e.outcome, nil
}
