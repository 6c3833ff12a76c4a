package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trustledger/internal/platform/middleware"
	"trustledger/internal/transport/http/shared"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
)

func (h *Handler) handleAddAttribute(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req addAttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	commitmentHash, err := chain.ParseHash32(req.CommitmentHash)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	proofHash, err := chain.ParseHash32(req.ProofHash)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	err = h.services.Attribute.Add(r.Context(), caller, tokenID, req.AttributeType, commitmentHash, proofHash, req.IsPublic)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleGetAttribute(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	attributeType := chi.URLParam(r, "attributeType")
	record, ok := h.services.Attribute.Attribute(r.Context(), tokenID, attributeType)
	shared.WriteJSON(w, http.StatusOK, wrapFound(toAttributeResponse(record), ok))
}
