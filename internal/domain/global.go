package domain

import "trustledger/pkg/chain"

// Global is the singleton contract state. ContractOwner is fixed at
// deployment; TokenIDNonce is strictly increasing.
type Global struct {
	TokenIDNonce  uint64
	Paused        bool
	ContractOwner chain.Principal
	BaseURI       string
}

// RateLimitState is the per-caller admission state: the block of the most
// recent rate-limited operation and the running operation counter. The counter
// is intentionally never cleared by the window-reset branch; see the admission
// service for the exact policy.
type RateLimitState struct {
	Caller     chain.Principal
	LastBlock  uint64
	OpsInBlock uint64
}
