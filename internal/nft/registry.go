// Package nft is the in-process implementation of the externally-visible NFT
// ownership relation. The identity registry keeps its own owner field
// synchronized with this relation inside the same serialized operation.
package nft

import (
	"context"
	"errors"
	"sync"

	"trustledger/pkg/chain"
)

var (
	ErrAlreadyMinted = errors.New("token already minted")
	ErrWrongOwner    = errors.New("sender does not own token")
)

type MemoryRegistry struct {
	mu     sync.RWMutex
	owners map[uint64]chain.Principal
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{owners: make(map[uint64]chain.Principal)}
}

func (r *MemoryRegistry) Mint(_ context.Context, owner chain.Principal, tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.owners[tokenID]; exists {
		return ErrAlreadyMinted
	}
	r.owners[tokenID] = owner
	return nil
}

func (r *MemoryRegistry) Transfer(_ context.Context, from, to chain.Principal, tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owners[tokenID] != from {
		return ErrWrongOwner
	}
	r.owners[tokenID] = to
	return nil
}

func (r *MemoryRegistry) OwnerOf(_ context.Context, tokenID uint64) (chain.Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[tokenID]
	return owner, ok
}
