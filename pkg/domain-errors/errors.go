// Package domainerrors defines the closed set of error codes the trust ledger
// can return. Every mutating operation either succeeds or fails with exactly
// one of these codes; transport layers map codes to status codes without
// inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies one failure kind. Values mirror the ledger's on-chain error
// constants and must stay stable across releases.
type Code uint

const (
	CodeNotAuthorized          Code = 100
	CodeInvalidToken           Code = 101
	CodeTokenExists            Code = 102 // reserved, no path returns it
	CodeInsufficientStake      Code = 103
	CodeInvalidProof           Code = 104 // reserved, no path returns it
	CodeAttestationNotFound    Code = 105
	CodeProviderNotRegistered  Code = 106
	CodeInsufficientReputation Code = 107
	CodeInvalidDisclosure      Code = 108 // reserved, no path returns it
	CodeContractPaused         Code = 109
	CodeRateLimitExceeded      Code = 110
	CodeOverflow               Code = 111
	CodeInvalidInput           Code = 112
	CodeAttestationRevoked     Code = 113 // reserved, no path returns it
	CodeBatchTooLarge          Code = 114
)

func (c Code) String() string {
	switch c {
	case CodeNotAuthorized:
		return "not_authorized"
	case CodeInvalidToken:
		return "invalid_token"
	case CodeTokenExists:
		return "token_exists"
	case CodeInsufficientStake:
		return "insufficient_stake"
	case CodeInvalidProof:
		return "invalid_proof"
	case CodeAttestationNotFound:
		return "attestation_not_found"
	case CodeProviderNotRegistered:
		return "provider_not_registered"
	case CodeInsufficientReputation:
		return "insufficient_reputation"
	case CodeInvalidDisclosure:
		return "invalid_disclosure"
	case CodeContractPaused:
		return "contract_paused"
	case CodeRateLimitExceeded:
		return "rate_limit_exceeded"
	case CodeOverflow:
		return "overflow"
	case CodeInvalidInput:
		return "invalid_input"
	case CodeAttestationRevoked:
		return "attestation_revoked"
	case CodeBatchTooLarge:
		return "batch_too_large"
	}
	return fmt.Sprintf("code_%d", uint(c))
}

// Error carries a stable code, a human message, and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (u%d): %s: %v", e.Code, uint(e.Code), e.Message, e.cause)
	}
	return fmt.Sprintf("%s (u%d): %s", e.Code, uint(e.Code), e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a domain code to an underlying infrastructure error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf extracts the domain code from err. The second return is false when
// err does not carry one.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return 0, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
