// Package domain defines the persistent records of the trust ledger. Records
// are replaced wholesale on write; read-modify-write sequences happen inside a
// single serialized operation, never across operations.
package domain

import "trustledger/pkg/chain"

// Identity is one minted self-sovereign profile. Token ids are allocated by a
// strictly increasing nonce starting at 1 and are never reused; identities are
// never physically deleted.
type Identity struct {
	TokenID        uint64
	Owner          chain.Principal
	CreatedAt      uint64 // block height
	AttributeCount uint64
	TrustScore     uint64
	IsActive       bool
}

// Attribute is a committed claim about an identity, keyed by (token id,
// attribute type). AttestationCount only ever grows; revocations do not
// decrement it.
type Attribute struct {
	TokenID          uint64
	AttributeType    string
	CommitmentHash   chain.Hash32
	ProofHash        chain.Hash32
	AttestationCount uint64
	VerifiedAt       uint64 // block height of the last write
	IsPublic         bool
}

// AttributeKey addresses one attribute record.
type AttributeKey struct {
	TokenID       uint64
	AttributeType string
}
