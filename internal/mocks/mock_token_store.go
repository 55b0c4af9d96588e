package mocks

import (
	"sync"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// MockTokenStore implements domain.TokenStore in memory and counts writes
type MockTokenStore struct {
	mu         sync.Mutex
	pair       domain.TokenPair
	SetCalls   int
	ClearCalls int
	cleared    domain.TokenPair
}

// NewMockTokenStore creates a store, optionally pre-seeded
func NewMockTokenStore(pair ...domain.TokenPair) *MockTokenStore {
	m := &MockTokenStore{}
	if len(pair) > 0 {
		m.pair = pair[0]
	}
	return m
}

// Get returns the stored pair
func (m *MockTokenStore) Get() (domain.TokenPair, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pair, !m.pair.IsZero()
}

// Set stores the pair
func (m *MockTokenStore) Set(pair domain.TokenPair) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	m.pair = pair
}

// Clear removes the pair
func (m *MockTokenStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if !m.pair.IsZero() {
		m.cleared = m.pair
	}
	m.pair = domain.TokenPair{}
}

// LastCleared returns the last non-empty pair removed by Clear
func (m *MockTokenStore) LastCleared() domain.TokenPair {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

// Counts returns the Set and Clear call counts
func (m *MockTokenStore) Counts() (sets, clears int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SetCalls, m.ClearCalls
}

// Compile-time interface compliance verification
var _ domain.TokenStore = (*MockTokenStore)(nil)
