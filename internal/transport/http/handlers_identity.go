package httptransport

import (
	"encoding/json"
	"net/http"

	"trustledger/internal/platform/middleware"
	"trustledger/internal/transport/http/shared"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
)

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	tokenID, err := h.services.Identity.Mint(r.Context(), caller, chain.Principal(req.Recipient), req.MetadataURI)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]uint64{"token_id": tokenID})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	err = h.services.Identity.Transfer(r.Context(), caller, chain.Principal(req.From), chain.Principal(req.To), tokenID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, ok := h.services.Identity.Identity(r.Context(), tokenID)
	shared.WriteJSON(w, http.StatusOK, wrapFound(toIdentityResponse(record), ok))
}

func (h *Handler) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	owner, _ := h.services.Identity.Owner(r.Context(), tokenID)
	shared.WriteJSON(w, http.StatusOK, map[string]string{"owner": owner.String()})
}

func (h *Handler) handleGetTokenURI(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	uri := h.services.Identity.TokenURI(r.Context(), tokenID)
	shared.WriteJSON(w, http.StatusOK, map[string]string{"uri": uri})
}

func (h *Handler) handleGetTrustScore(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	score := h.services.Identity.TrustScore(r.Context(), tokenID)
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"trust_score": score})
}

func (h *Handler) handleLastTokenID(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"token_id": h.services.Identity.LastTokenID(r.Context())})
}
