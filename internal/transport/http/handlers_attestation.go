package httptransport

import (
	"encoding/json"
	"net/http"

	"trustledger/internal/attestation"
	"trustledger/internal/platform/middleware"
	"trustledger/internal/transport/http/shared"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
)

func (h *Handler) handleCreateAttestation(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req createAttestationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	entry, err := toBatchEntry(req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	err = h.services.Attestation.Create(r.Context(), caller, entry.TokenID, entry.AttributeType, entry.AttestationID, entry.ConfidenceScore)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleBatchAttestations(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req batchAttestationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	entries := make([]attestation.BatchEntry, 0, len(req.Entries))
	for _, raw := range req.Entries {
		entry, err := toBatchEntry(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		entries = append(entries, entry)
	}

	written, err := h.services.Attestation.CreateBatch(r.Context(), caller, entries)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"written": written})
}

func (h *Handler) handleRevokeAttestation(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	attestationID, err := hashParam(r, "attestationID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req revokeAttestationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.services.Attestation.Revoke(r.Context(), caller, attestationID, req.Reason); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetAttestation(w http.ResponseWriter, r *http.Request) {
	attestationID, err := hashParam(r, "attestationID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, ok := h.services.Attestation.Attestation(r.Context(), attestationID)
	shared.WriteJSON(w, http.StatusOK, wrapFound(toAttestationResponse(record), ok))
}

func (h *Handler) handleGetRevocation(w http.ResponseWriter, r *http.Request) {
	attestationID, err := hashParam(r, "attestationID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, ok := h.services.Attestation.Revocation(r.Context(), attestationID)
	response := revocationResponse{
		AttestationID: record.AttestationID.String(),
		RevokedAt:     record.RevokedAt,
		Reason:        record.Reason,
	}
	shared.WriteJSON(w, http.StatusOK, struct {
		Revoked bool                `json:"revoked"`
		Record  *revocationResponse `json:"record"`
	}{Revoked: ok, Record: recordIf(ok, response)})
}

func toBatchEntry(req createAttestationRequest) (attestation.BatchEntry, error) {
	attestationID, err := chain.ParseHash32(req.AttestationID)
	if err != nil {
		return attestation.BatchEntry{}, err
	}
	return attestation.BatchEntry{
		TokenID:         req.TokenID,
		AttributeType:   req.AttributeType,
		AttestationID:   attestationID,
		ConfidenceScore: req.ConfidenceScore,
	}, nil
}

func recordIf(ok bool, response revocationResponse) *revocationResponse {
	if !ok {
		return nil
	}
	return &response
}
