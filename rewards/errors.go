package rewards

import "errors"

var (
	// ErrZeroPeriods indicates a reward cadence of zero periods per year.
	ErrZeroPeriods = errors.New("rewards: periods per year must be positive")

	// ErrTooManyPeriods indicates a compounding cadence above MaxPeriods.
	ErrTooManyPeriods = errors.New("rewards: too many compounding periods")

	// ErrOverflow indicates an intermediate product exceeded 256 bits.
	ErrOverflow = errors.New("rewards: arithmetic overflow")
)
