// Package audit captures a structured event for every successful mutating
// ledger operation. Emission is best-effort and sits outside the transaction:
// a failed emit never rolls back ledger state.
package audit

import (
	"time"

	"trustledger/pkg/chain"
)

// Event describes one committed ledger operation.
type Event struct {
	ID         string          `json:"id"`
	Operation  string          `json:"operation"`
	Caller     chain.Principal `json:"caller"`
	Entity     string          `json:"entity"`
	Block      uint64          `json:"block"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Operation names used in events, one per public mutating operation.
const (
	OpMint               = "mint"
	OpTransfer           = "transfer"
	OpAddAttribute       = "add_attribute"
	OpRegisterProvider   = "register_provider"
	OpStakeOnAttestation = "stake_on_attestation"
	OpCreateAttestation  = "create_attestation"
	OpBatchAttestations  = "batch_create_attestations"
	OpRevokeAttestation  = "revoke_attestation"
	OpApplyDecay         = "apply_decay"
	OpGrantPermission    = "grant_permission"
	OpVerifyZkProof      = "verify_zk_proof"
	OpPause              = "pause"
	OpUnpause            = "unpause"
)
