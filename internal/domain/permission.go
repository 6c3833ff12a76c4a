package domain

import "trustledger/pkg/chain"

// DappPermission is a time-bounded disclosure grant from an identity owner to
// a third-party application. Stores return active grants as written; comparing
// ExpiresAt against the current block is the reader's responsibility.
type DappPermission struct {
	TokenID           uint64
	Dapp              chain.Principal
	AllowedAttributes []string
	ExpiresAt         uint64 // block height
	GrantedAt         uint64 // block height
	IsActive          bool
}

// PermissionKey addresses one disclosure grant.
type PermissionKey struct {
	TokenID uint64
	Dapp    chain.Principal
}

// ZkProof is stored proof metadata. This layer performs no cryptographic
// verification; VerifiedAt and Verifier record who stamped it and when.
type ZkProof struct {
	ProofID      chain.Hash32
	TokenID      uint64
	ProofType    string
	PublicInputs []chain.Hash32
	VerifiedAt   uint64 // block height
	Verifier     chain.Principal
}
