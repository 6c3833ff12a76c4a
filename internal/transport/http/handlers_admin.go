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

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	if err := h.services.Admission.Pause(r.Context(), caller); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	if err := h.services.Admission.Unpause(r.Context(), caller); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetPaused(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"paused": h.services.Admission.IsPaused(r.Context())})
}

func (h *Handler) handleGetBlockHeight(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"height": h.blocks.Height()})
}

// handleAdvanceBlocks moves the manual block source forward. Only available
// when the server owns the block height; with an external chain source the
// endpoint rejects.
func (h *Handler) handleAdvanceBlocks(w http.ResponseWriter, r *http.Request) {
	if h.manualBlocks == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "block height is externally driven"))
		return
	}

	var req advanceBlocksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if req.Blocks == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "blocks must be positive"))
		return
	}

	h.manualBlocks.Advance(req.Blocks)
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"height": h.manualBlocks.Height()})
}

func (h *Handler) handleGetRateLimitState(w http.ResponseWriter, r *http.Request) {
	principal := chain.Principal(chi.URLParam(r, "principal"))
	state := h.services.Admission.RateLimitState(r.Context(), principal)
	shared.WriteJSON(w, http.StatusOK, toRateLimitResponse(state))
}
