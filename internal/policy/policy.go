// Package policy holds the protocol constants of the trust ledger. They are
// consensus-relevant: changing any of them changes which operations are
// admitted, so they are compile-time constants rather than configuration.
package policy

const (
	// MaxAttributes bounds the number of attribute records per identity.
	MaxAttributes = 10

	// MinStakeAmount is the minimum escrowed stake for provider registration
	// and per-attestation stakes, in base units of the native asset.
	MinStakeAmount = 1_000_000

	// InitialReputation is assigned to every newly registered provider.
	InitialReputation = 100

	// MinReputationThreshold is the reputation floor for creating attestations.
	MinReputationThreshold = 100

	// MaxBatchSize bounds a single batch-create-attestations call.
	MaxBatchSize = 20

	// MaxConfidenceScore is the inclusive upper bound of attestation confidence.
	MaxConfidenceScore = 100

	// MaxAllowedAttributes bounds the attribute list on a disclosure grant.
	MaxAllowedAttributes = 10

	// RateLimitWindowBlocks is the block window after which a caller is
	// admitted regardless of the per-block counter.
	RateLimitWindowBlocks = 10

	// MaxOpsPerBlock is the per-caller quota of rate-limited operations
	// within a single block.
	MaxOpsPerBlock = 5

	// DecayPeriodBlocks is the minimum gap between reputation decay
	// applications for one provider.
	DecayPeriodBlocks = 4320

	// DecayRatePercent is the share of reputation removed per decay period.
	DecayRatePercent = 5
)
