package domain

import "trustledger/pkg/chain"

// Attestation is a provider's claim that an attribute is valid, keyed by a
// caller-supplied 32-byte id. Callers are responsible for id uniqueness; a
// colliding id silently overwrites the previous record.
type Attestation struct {
	AttestationID   chain.Hash32
	Provider        chain.Principal
	TokenID         uint64
	AttributeType   string
	ConfidenceScore uint64
	CreatedAt       uint64 // block height
	IsVerified      bool
}

// RevokedAttestation is the advisory side record marking an attestation as
// withdrawn. It does not alter attestation counters and no creation or
// verification path consults it.
type RevokedAttestation struct {
	AttestationID chain.Hash32
	RevokedAt     uint64 // block height
	Reason        string
}
