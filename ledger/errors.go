package ledger

import "errors"

var (
	// ErrCapExceeded indicates a deposit or mint would push total assets above the cap.
	ErrCapExceeded = errors.New("ledger: cap exceeded")

	// ErrExceedsStaked indicates a reconciliation larger than the staked total.
	ErrExceedsStaked = errors.New("ledger: amount exceeds staked total")

	// ErrInsufficientLiquidity indicates a request larger than the idle balance backs.
	ErrInsufficientLiquidity = errors.New("ledger: insufficient idle liquidity")

	// ErrInsufficientShares indicates a holder does not own enough shares.
	ErrInsufficientShares = errors.New("ledger: insufficient shares")

	// ErrInsufficientAllowance indicates a spender was not approved for enough shares.
	ErrInsufficientAllowance = errors.New("ledger: insufficient allowance")

	// ErrArithmeticOverflow indicates a result would not fit in 256 bits.
	ErrArithmeticOverflow = errors.New("ledger: arithmetic overflow")

	// ErrArithmeticUnderflow indicates a result would drop below zero.
	ErrArithmeticUnderflow = errors.New("ledger: arithmetic underflow")

	// ErrZeroAmount indicates an operation was requested for a zero amount.
	ErrZeroAmount = errors.New("ledger: zero amount")

	// ErrZeroShares indicates a deposit too small to mint a single share.
	ErrZeroShares = errors.New("ledger: deposit rounds to zero shares")

	// ErrZeroAddress indicates the zero address was used as a share holder.
	ErrZeroAddress = errors.New("ledger: zero address")

	// ErrAPRTooHigh indicates a target APR above rewards.MaxAPR.
	ErrAPRTooHigh = errors.New("ledger: target APR too high")

	// ErrShareConservationViolation indicates holder balances do not sum to total shares.
	ErrShareConservationViolation = errors.New("ledger: share conservation violated")

	// ErrInvalidShareData indicates a serialized share ledger is malformed.
	ErrInvalidShareData = errors.New("ledger: invalid share data")

	// ErrInvalidAddress indicates an address string could not be parsed.
	ErrInvalidAddress = errors.New("ledger: invalid address")
)
