// Package assets provides the in-process implementation of the native asset
// transfer primitive the ledger escrows stakes through. In production this is
// the hosting chain's fungible-token ledger; here it is an in-memory balance
// map for the dev server and tests.
package assets

import (
	"context"
	"errors"
	"sync"

	"trustledger/pkg/chain"
)

// ErrInsufficientBalance fails the enclosing transaction when the sender
// cannot cover the transfer.
var ErrInsufficientBalance = errors.New("insufficient balance")

type MemoryLedger struct {
	mu       sync.Mutex
	balances map[chain.Principal]uint64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[chain.Principal]uint64)}
}

// Credit mints balance onto an account. Dev/test faucet only.
func (l *MemoryLedger) Credit(principal chain.Principal, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[principal] += amount
}

// Balance returns the current balance of an account.
func (l *MemoryLedger) Balance(principal chain.Principal) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[principal]
}

// Transfer atomically moves value between accounts.
func (l *MemoryLedger) Transfer(_ context.Context, amount uint64, from, to chain.Principal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}
