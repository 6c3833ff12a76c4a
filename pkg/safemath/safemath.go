// Package safemath provides checked uint64 arithmetic. Every counter that an
// untrusted caller can influence (token nonce, attribute counts, decay
// accumulators) must go through these helpers; silent wraparound is never
// acceptable in ledger state.
package safemath

import dErrors "trustledger/pkg/domain-errors"

// Add returns a+b, or an Overflow error if the sum wrapped.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, dErrors.New(dErrors.CodeOverflow, "addition overflow")
	}
	return sum, nil
}

// Mul returns a*b, or an Overflow error if the product wrapped.
func Mul(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, nil
	}
	product := a * b
	if product/b != a {
		return 0, dErrors.New(dErrors.CodeOverflow, "multiplication overflow")
	}
	return product, nil
}
