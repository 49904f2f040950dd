package staking

import "errors"

var (
	// ErrUnknownContract indicates a bind to an address that is not this contract.
	ErrUnknownContract = errors.New("staking: unknown contract")

	// ErrInsufficientStake indicates a withdrawal above an operator's stake.
	ErrInsufficientStake = errors.New("staking: insufficient stake")

	// ErrZeroAmount indicates a zero stake or withdrawal.
	ErrZeroAmount = errors.New("staking: zero amount")
)
