package cooldown

import (
	"context"
	"sync"
	"time"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// MemoryStore tracks resend windows in process memory
type MemoryStore struct {
	mu        sync.Mutex
	deadlines map[string]time.Time
	now       func() time.Time
}

// NewMemoryStore creates an in-memory cool-down store. now may be nil.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{deadlines: make(map[string]time.Time), now: now}
}

// Acquire implements domain.CooldownStore
func (s *MemoryStore) Acquire(_ context.Context, key string, window time.Duration) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if deadline, ok := s.deadlines[key]; ok && deadline.After(now) {
		return false, deadline.Sub(now)
	}
	s.deadlines[key] = now.Add(window)
	return true, 0
}

// Remaining implements domain.CooldownStore
func (s *MemoryStore) Remaining(_ context.Context, key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.deadlines[key]
	if !ok {
		return 0
	}
	left := deadline.Sub(s.now())
	if left <= 0 {
		delete(s.deadlines, key)
		return 0
	}
	return left
}

// Release implements domain.CooldownStore
func (s *MemoryStore) Release(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deadlines, key)
}

var _ domain.CooldownStore = (*MemoryStore)(nil)
