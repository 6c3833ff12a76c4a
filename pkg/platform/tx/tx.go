// Package tx provides the single serialization point for ledger transactions.
// The hosting environment guarantees a total order over operations; in-process
// that guarantee is one mutex shared by every mutating service. Operations
// validate fully before their first write, so a failed operation under the
// lock leaves no partial state behind.
package tx

import (
	"context"
	"sync"
)

// Serializer runs ledger operations one at a time.
type Serializer struct {
	mu sync.Mutex
}

// NewSerializer returns the shared operation serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Do executes fn as one ledger transaction. It respects context cancellation
// only before the transaction starts; once fn runs it completes synchronously.
func (s *Serializer) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
