// Package shared centralizes JSON encoding and domain-error translation for
// the HTTP transport so every handler produces the same envelopes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "trustledger/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for failed requests. Code is the stable
// ledger error code; clients should branch on it, not on the message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    uint   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status and writes the error
// envelope. Errors without a domain code become 500s with no detail leaked.
func WriteError(w http.ResponseWriter, err error) {
	code, ok := dErrors.CodeOf(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
		return
	}

	var de *dErrors.Error
	message := ""
	if errors.As(err, &de) {
		message = de.Message
	}
	WriteJSON(w, statusOf(code), ErrorResponse{Error: code.String(), Code: uint(code), Message: message})
}

func statusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotAuthorized, dErrors.CodeInsufficientReputation:
		return http.StatusForbidden
	case dErrors.CodeInvalidToken, dErrors.CodeAttestationNotFound, dErrors.CodeProviderNotRegistered:
		return http.StatusNotFound
	case dErrors.CodeInsufficientStake:
		return http.StatusPaymentRequired
	case dErrors.CodeContractPaused:
		return http.StatusServiceUnavailable
	case dErrors.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case dErrors.CodeTokenExists, dErrors.CodeAttestationRevoked:
		return http.StatusConflict
	case dErrors.CodeInvalidInput, dErrors.CodeBatchTooLarge, dErrors.CodeOverflow,
		dErrors.CodeInvalidProof, dErrors.CodeInvalidDisclosure:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
