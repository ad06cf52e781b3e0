package session

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/recipehub/internal/auth"
)

// MemoryStore keeps sessions in process. Expired entries are dropped lazily
// on access and by Sweep. Sessions do not survive a restart and are not
// shared between replicas, so it is meant for dev and tests.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time
	m   map[string]entry
}

type entry struct {
	principal auth.Principal
	exp       time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now: time.Now,
		m:   make(map[string]entry),
	}
}

// WithClock replaces the time source, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Save(_ context.Context, id string, p auth.Principal, ttl time.Duration) error {
	s.mu.Lock()
	s.m[id] = entry{principal: p, exp: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (auth.Principal, error) {
	now := s.now()
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return auth.Principal{}, auth.ErrSessionNotFound
	}

	if now.After(e.exp) {
		s.mu.Lock()
		delete(s.m, id)
		s.mu.Unlock()
		return auth.Principal{}, auth.ErrSessionNotFound
	}

	return e.principal, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	now := s.now()
	s.mu.Lock()
	e, ok := s.m[id]
	delete(s.m, id)
	s.mu.Unlock()

	return ok && !now.After(e.exp), nil
}

// Sweep drops every expired session and reports how many went.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.m {
		if now.After(e.exp) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

// RunSweeper sweeps every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
