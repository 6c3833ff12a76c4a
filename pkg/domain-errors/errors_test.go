package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	err := New(CodeRateLimitExceeded, "too many operations")
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeRateLimitExceeded, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestCodeOfWrapped(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInsufficientStake, "escrow transfer failed")

	assert.True(t, HasCode(err, CodeInsufficientStake))
	assert.True(t, errors.Is(err, cause))

	// Codes survive an extra fmt wrap.
	outer := fmt.Errorf("register provider: %w", err)
	code, ok := CodeOf(outer)
	require.True(t, ok)
	assert.Equal(t, CodeInsufficientStake, code)
}

func TestErrorMessageCarriesNumericCode(t *testing.T) {
	err := New(CodeContractPaused, "ledger is paused")
	assert.Contains(t, err.Error(), "u109")
	assert.Contains(t, err.Error(), "contract_paused")
}
