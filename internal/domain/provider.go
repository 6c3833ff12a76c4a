package domain

import "trustledger/pkg/chain"

// Provider is a staked principal allowed to attest to attributes. Reputation
// starts at the policy initial value, is clamped at zero, and only moves
// through registration and decay.
type Provider struct {
	Principal              chain.Principal
	Reputation             uint64
	StakeAmount            uint64
	TotalAttestations      uint64
	SuccessfulAttestations uint64
	IsActive               bool
	RegisteredAt           uint64 // block height
}

// ReputationStake is escrowed value backing a provider's attestations on one
// identity. Funds move to custody in the same operation that writes the record.
type ReputationStake struct {
	Provider    chain.Principal
	TokenID     uint64
	StakeAmount uint64
	LockedUntil uint64 // block height
	IsSlashed   bool
}

// StakeKey addresses one reputation stake record.
type StakeKey struct {
	Provider chain.Principal
	TokenID  uint64
}

// ReputationDecayTracker records when a provider's reputation last decayed and
// how much has been removed in total.
type ReputationDecayTracker struct {
	Provider       chain.Principal
	LastDecayBlock uint64
	DecayedAmount  uint64
}
