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

func (h *Handler) handleRegisterProvider(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req registerProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.services.Provider.Register(r.Context(), caller, req.StakeAmount); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleStakeOnAttestation(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	err := h.services.Provider.StakeOnAttestation(r.Context(), caller, req.TokenID, req.StakeAmount, req.LockDuration)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleApplyDecay(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	target := chain.Principal(chi.URLParam(r, "principal"))

	reputation, err := h.services.Reputation.ApplyDecay(r.Context(), caller, target)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"reputation": reputation})
}

func (h *Handler) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	principal := chain.Principal(chi.URLParam(r, "principal"))
	record, ok := h.services.Provider.Provider(r.Context(), principal)
	shared.WriteJSON(w, http.StatusOK, wrapFound(toProviderResponse(record), ok))
}

func (h *Handler) handleGetStake(w http.ResponseWriter, r *http.Request) {
	principal := chain.Principal(chi.URLParam(r, "principal"))
	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, ok := h.services.Provider.Stake(r.Context(), principal, tokenID)
	shared.WriteJSON(w, http.StatusOK, wrapFound(toStakeResponse(record), ok))
}

func (h *Handler) handleGetDecayTracker(w http.ResponseWriter, r *http.Request) {
	principal := chain.Principal(chi.URLParam(r, "principal"))
	record, ok := h.services.Reputation.Tracker(r.Context(), principal)
	response := decayTrackerResponse{
		Provider:       record.Provider.String(),
		LastDecayBlock: record.LastDecayBlock,
		DecayedAmount:  record.DecayedAmount,
	}
	shared.WriteJSON(w, http.StatusOK, wrapFound(response, ok))
}
