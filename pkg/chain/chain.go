// Package chain holds the primitive types the hosting environment supplies to
// the ledger: authenticated caller principals, opaque 32-byte identifiers, and
// the monotonic block height every window and timestamp is measured against.
package chain

import (
	"encoding/hex"
	"sync/atomic"

	dErrors "trustledger/pkg/domain-errors"
)

// Principal is an already-authenticated caller identity. The ledger trusts it
// completely; authentication happens at the transport layer.
type Principal string

func (p Principal) String() string { return string(p) }

// Hash32 is an opaque 32-byte identifier (commitment hashes, proof hashes,
// attestation ids, proof ids). Uniqueness is the caller's responsibility.
type Hash32 [32]byte

func (h Hash32) String() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether the hash is all zero bytes.
func (h Hash32) IsZero() bool { return h == Hash32{} }

// ParseHash32 decodes a 64-character hex string into a Hash32.
func ParseHash32(s string) (Hash32, error) {
	var h Hash32
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(h) {
		return Hash32{}, dErrors.New(dErrors.CodeInvalidInput, "expected 32 bytes of hex")
	}
	copy(h[:], raw)
	return h, nil
}

// BlockSource exposes the host's block height. It is non-decreasing across
// transactions and only the host advances it.
type BlockSource interface {
	Height() uint64
}

// ManualBlockSource is a host-advanced block counter. The dev server advances
// it through an admin endpoint; tests advance it directly.
type ManualBlockSource struct {
	height atomic.Uint64
}

// NewManualBlockSource starts the chain at the given height.
func NewManualBlockSource(start uint64) *ManualBlockSource {
	s := &ManualBlockSource{}
	s.height.Store(start)
	return s
}

func (s *ManualBlockSource) Height() uint64 { return s.height.Load() }

// Advance moves the chain forward by n blocks and returns the new height.
func (s *ManualBlockSource) Advance(n uint64) uint64 {
	return s.height.Add(n)
}
