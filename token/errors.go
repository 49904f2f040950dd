package token

import "errors"

var (
	// ErrInsufficientBalance indicates the sender holds less than the amount.
	ErrInsufficientBalance = errors.New("token: insufficient balance")

	// ErrInsufficientAllowance indicates the spender's allowance is below the amount.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")

	// ErrZeroAddress indicates a transfer to or approval of the zero address.
	ErrZeroAddress = errors.New("token: zero address")

	// ErrOverflow indicates a balance or the supply would exceed 256 bits.
	ErrOverflow = errors.New("token: supply overflow")
)
