// Package store provides rate-limit state persistence. The in-memory
// implementation backs tests and single-node deployments; RedisStore shares
// state across instances.
package store

import (
	"context"
	"sync"

	"trustledger/internal/domain"
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	states map[chain.Principal]domain.RateLimitState
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[chain.Principal]domain.RateLimitState)}
}

func (s *InMemoryStore) Find(_ context.Context, caller chain.Principal) (domain.RateLimitState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.states[caller]; ok {
		return state, nil
	}
	return domain.RateLimitState{}, storage.ErrNotFound
}

func (s *InMemoryStore) Save(_ context.Context, state domain.RateLimitState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.Caller] = state
	return nil
}
