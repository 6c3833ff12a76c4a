package httptransport

import (
	"trustledger/internal/domain"
)

// Read accessors never fail: absent entities produce found=false with a null
// record rather than a 404.

type identityResponse struct {
	TokenID        uint64 `json:"token_id"`
	Owner          string `json:"owner"`
	CreatedAt      uint64 `json:"created_at"`
	AttributeCount uint64 `json:"attribute_count"`
	TrustScore     uint64 `json:"trust_score"`
	IsActive       bool   `json:"is_active"`
}

func toIdentityResponse(record domain.Identity) identityResponse {
	return identityResponse{
		TokenID:        record.TokenID,
		Owner:          record.Owner.String(),
		CreatedAt:      record.CreatedAt,
		AttributeCount: record.AttributeCount,
		TrustScore:     record.TrustScore,
		IsActive:       record.IsActive,
	}
}

type attributeResponse struct {
	TokenID          uint64 `json:"token_id"`
	AttributeType    string `json:"attribute_type"`
	CommitmentHash   string `json:"commitment_hash"`
	ProofHash        string `json:"proof_hash"`
	AttestationCount uint64 `json:"attestation_count"`
	VerifiedAt       uint64 `json:"verified_at"`
	IsPublic         bool   `json:"is_public"`
}

func toAttributeResponse(record domain.Attribute) attributeResponse {
	return attributeResponse{
		TokenID:          record.TokenID,
		AttributeType:    record.AttributeType,
		CommitmentHash:   record.CommitmentHash.String(),
		ProofHash:        record.ProofHash.String(),
		AttestationCount: record.AttestationCount,
		VerifiedAt:       record.VerifiedAt,
		IsPublic:         record.IsPublic,
	}
}

type providerResponse struct {
	Principal              string `json:"principal"`
	Reputation             uint64 `json:"reputation"`
	StakeAmount            uint64 `json:"stake_amount"`
	TotalAttestations      uint64 `json:"total_attestations"`
	SuccessfulAttestations uint64 `json:"successful_attestations"`
	IsActive               bool   `json:"is_active"`
	RegisteredAt           uint64 `json:"registered_at"`
}

func toProviderResponse(record domain.Provider) providerResponse {
	return providerResponse{
		Principal:              record.Principal.String(),
		Reputation:             record.Reputation,
		StakeAmount:            record.StakeAmount,
		TotalAttestations:      record.TotalAttestations,
		SuccessfulAttestations: record.SuccessfulAttestations,
		IsActive:               record.IsActive,
		RegisteredAt:           record.RegisteredAt,
	}
}

type stakeResponse struct {
	Provider    string `json:"provider"`
	TokenID     uint64 `json:"token_id"`
	StakeAmount uint64 `json:"stake_amount"`
	LockedUntil uint64 `json:"locked_until"`
	IsSlashed   bool   `json:"is_slashed"`
}

func toStakeResponse(record domain.ReputationStake) stakeResponse {
	return stakeResponse{
		Provider:    record.Provider.String(),
		TokenID:     record.TokenID,
		StakeAmount: record.StakeAmount,
		LockedUntil: record.LockedUntil,
		IsSlashed:   record.IsSlashed,
	}
}

type attestationResponse struct {
	AttestationID   string `json:"attestation_id"`
	Provider        string `json:"provider"`
	TokenID         uint64 `json:"token_id"`
	AttributeType   string `json:"attribute_type"`
	ConfidenceScore uint64 `json:"confidence_score"`
	CreatedAt       uint64 `json:"created_at"`
	IsVerified      bool   `json:"is_verified"`
}

func toAttestationResponse(record domain.Attestation) attestationResponse {
	return attestationResponse{
		AttestationID:   record.AttestationID.String(),
		Provider:        record.Provider.String(),
		TokenID:         record.TokenID,
		AttributeType:   record.AttributeType,
		ConfidenceScore: record.ConfidenceScore,
		CreatedAt:       record.CreatedAt,
		IsVerified:      record.IsVerified,
	}
}

type revocationResponse struct {
	AttestationID string `json:"attestation_id"`
	RevokedAt     uint64 `json:"revoked_at"`
	Reason        string `json:"reason"`
}

type decayTrackerResponse struct {
	Provider       string `json:"provider"`
	LastDecayBlock uint64 `json:"last_decay_block"`
	DecayedAmount  uint64 `json:"decayed_amount"`
}

type permissionResponse struct {
	TokenID           uint64   `json:"token_id"`
	Dapp              string   `json:"dapp"`
	AllowedAttributes []string `json:"allowed_attributes"`
	ExpiresAt         uint64   `json:"expires_at"`
	GrantedAt         uint64   `json:"granted_at"`
	IsActive          bool     `json:"is_active"`
}

type proofResponse struct {
	ProofID      string   `json:"proof_id"`
	TokenID      uint64   `json:"token_id"`
	ProofType    string   `json:"proof_type"`
	PublicInputs []string `json:"public_inputs"`
	VerifiedAt   uint64   `json:"verified_at"`
	Verifier     string   `json:"verifier"`
}

func toProofResponse(record domain.ZkProof) proofResponse {
	inputs := make([]string, 0, len(record.PublicInputs))
	for _, input := range record.PublicInputs {
		inputs = append(inputs, input.String())
	}
	return proofResponse{
		ProofID:      record.ProofID.String(),
		TokenID:      record.TokenID,
		ProofType:    record.ProofType,
		PublicInputs: inputs,
		VerifiedAt:   record.VerifiedAt,
		Verifier:     record.Verifier.String(),
	}
}

type rateLimitResponse struct {
	Caller     string `json:"caller"`
	LastBlock  uint64 `json:"last_block"`
	OpsInBlock uint64 `json:"ops_in_block"`
}

func toRateLimitResponse(record domain.RateLimitState) rateLimitResponse {
	return rateLimitResponse{
		Caller:     record.Caller.String(),
		LastBlock:  record.LastBlock,
		OpsInBlock: record.OpsInBlock,
	}
}

// found wraps an optional record for the never-failing read accessors.
type found[T any] struct {
	Found  bool `json:"found"`
	Record *T   `json:"record"`
}

func wrapFound[T any](record T, ok bool) found[T] {
	if !ok {
		return found[T]{}
	}
	return found[T]{Found: true, Record: &record}
}
