package httptransport

import (
	"encoding/json"
	"net/http"

	"trustledger/internal/platform/middleware"
	"trustledger/internal/transport/http/shared"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
)

func (h *Handler) handleVerifyProof(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req verifyProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	proofID, err := chain.ParseHash32(req.ProofID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	publicInputs := make([]chain.Hash32, 0, len(req.PublicInputs))
	for _, raw := range req.PublicInputs {
		input, err := chain.ParseHash32(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		publicInputs = append(publicInputs, input)
	}

	err = h.services.ZkProof.Verify(r.Context(), caller, req.TokenID, proofID, req.ProofType, publicInputs, req.ProofData)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleGetProof(w http.ResponseWriter, r *http.Request) {
	proofID, err := hashParam(r, "proofID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, ok := h.services.ZkProof.Proof(r.Context(), proofID)
	shared.WriteJSON(w, http.StatusOK, wrapFound(toProofResponse(record), ok))
}
