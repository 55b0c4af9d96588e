package tokenstore

import (
	"sync"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// MemoryStore keeps the pair for the lifetime of the process only
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Set implements domain.TokenStore
func (s *MemoryStore) Set(pair domain.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KeyAccessToken] = pair.AccessToken
	if pair.RefreshToken == "" {
		delete(s.values, KeyRefreshToken)
		return
	}
	s.values[KeyRefreshToken] = pair.RefreshToken
}

// Get implements domain.TokenStore
func (s *MemoryStore) Get() (domain.TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pair := domain.TokenPair{AccessToken: s.values[KeyAccessToken], RefreshToken: s.values[KeyRefreshToken]}
	if pair.IsZero() {
		return domain.TokenPair{}, false
	}
	return pair, true
}

// Clear implements domain.TokenStore
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, KeyAccessToken)
	delete(s.values, KeyRefreshToken)
}

var _ domain.TokenStore = (*MemoryStore)(nil)
