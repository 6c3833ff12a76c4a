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

func (h *Handler) handleGrantPermission(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req grantPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	err = h.services.Permission.Grant(r.Context(), caller, tokenID, chain.Principal(req.Dapp), req.AllowedAttributes, req.Duration)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleGetPermission(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	dapp := chain.Principal(chi.URLParam(r, "dapp"))
	record, ok := h.services.Permission.Permission(r.Context(), tokenID, dapp)
	response := permissionResponse{
		TokenID:           record.TokenID,
		Dapp:              record.Dapp.String(),
		AllowedAttributes: record.AllowedAttributes,
		ExpiresAt:         record.ExpiresAt,
		GrantedAt:         record.GrantedAt,
		IsActive:          record.IsActive,
	}
	shared.WriteJSON(w, http.StatusOK, wrapFound(response, ok))
}
