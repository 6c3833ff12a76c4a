package httptransport

// Hashes travel as 64-character hex strings and are parsed into 32-byte
// values before reaching the services.

type mintRequest struct {
	Recipient   string `json:"recipient"`
	MetadataURI string `json:"metadata_uri"`
}

type transferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type addAttributeRequest struct {
	AttributeType  string `json:"attribute_type"`
	CommitmentHash string `json:"commitment_hash"`
	ProofHash      string `json:"proof_hash"`
	IsPublic       bool   `json:"is_public"`
}

type registerProviderRequest struct {
	StakeAmount uint64 `json:"stake_amount"`
}

type stakeRequest struct {
	TokenID      uint64 `json:"token_id"`
	StakeAmount  uint64 `json:"stake_amount"`
	LockDuration uint64 `json:"lock_duration"`
}

type createAttestationRequest struct {
	TokenID         uint64 `json:"token_id"`
	AttributeType   string `json:"attribute_type"`
	AttestationID   string `json:"attestation_id"`
	ConfidenceScore uint64 `json:"confidence_score"`
}

type batchAttestationsRequest struct {
	Entries []createAttestationRequest `json:"entries"`
}

type revokeAttestationRequest struct {
	Reason string `json:"reason"`
}

type grantPermissionRequest struct {
	Dapp              string   `json:"dapp"`
	AllowedAttributes []string `json:"allowed_attributes"`
	Duration          uint64   `json:"duration"`
}

type verifyProofRequest struct {
	ProofID      string   `json:"proof_id"`
	TokenID      uint64   `json:"token_id"`
	ProofType    string   `json:"proof_type"`
	PublicInputs []string `json:"public_inputs"`
	ProofData    []byte   `json:"proof_data"`
}

type advanceBlocksRequest struct {
	Blocks uint64 `json:"blocks"`
}
