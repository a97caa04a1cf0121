package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store used when no Redis server is
// configured and by tests. A single mutex serializes every mutation, which
// trivially satisfies the per-subject atomicity Rotate requires. Session sets
// do not survive a restart; clients simply log in again.
type MemoryStore struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]map[string]struct{})}
}

func (s *MemoryStore) Add(_ context.Context, subject, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[subject]
	if !ok {
		set = make(map[string]struct{})
		s.sets[subject] = set
	}
	set[token] = struct{}{}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, subject, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[subject]
	if !ok {
		return false, nil
	}
	if _, present := set[token]; !present {
		return false, nil
	}
	delete(set, token)
	if len(set) == 0 {
		delete(s.sets, subject)
	}
	return true, nil
}

func (s *MemoryStore) Contains(_ context.Context, subject, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, present := s.sets[subject][token]
	return present, nil
}

func (s *MemoryStore) Rotate(_ context.Context, subject, old, new string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[subject]
	if !ok {
		return false, nil
	}
	if _, present := set[old]; !present {
		return false, nil
	}
	delete(set, old)
	set[new] = struct{}{}
	return true, nil
}

func (s *MemoryStore) Clear(_ context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, subject)
	return nil
}
