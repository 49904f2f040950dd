// Package rewards holds the pure reward and yield arithmetic of the vault.
// Rates are expressed in basis points; compounding uses 1e18 fixed point.
package rewards

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// BasisPoints is the denominator of a basis-point rate (100.00%).
	BasisPoints = 10000

	// PeriodsPerYear is the reward-cycle cadence: thirteen 28-day cycles.
	PeriodsPerYear = 13

	// DefaultTargetAPR is the APR a freshly initialized vault starts with.
	DefaultTargetAPR = 1836

	// MaxAPR bounds the configurable APR (1000%).
	MaxAPR = 100000

	// MaxPeriods bounds the compounding loop (hourly compounding).
	MaxPeriods = 8760
)

var (
	bps   = uint256.NewInt(BasisPoints)
	scale = uint256.NewInt(1_000_000_000_000_000_000) // 1e18
)

// Scale returns the fixed-point scale factor (1e18) used by CalculateAPYFromAPR.
func Scale() *uint256.Int { return scale.Clone() }

// PreviewRewardsAtStakedAmount returns the per-period reward for stake at the
// given APR: apr * stake / 10000 / periods. Divisions truncate in that order.
func PreviewRewardsAtStakedAmount(apr, stake *uint256.Int, periods uint64) (*uint256.Int, error) {
	if periods == 0 {
		return nil, ErrZeroPeriods
	}
	reward, overflow := new(uint256.Int).MulOverflow(apr, stake)
	if overflow {
		return nil, fmt.Errorf("%w: apr %s * stake %s", ErrOverflow, apr, stake)
	}
	reward.Div(reward, bps)
	reward.Div(reward, uint256.NewInt(periods))
	return reward, nil
}

// CalculateAPYFromAPR compounds a basis-point APR across periods cycles and
// returns the APY scaled by 1e18, i.e. ((1 + r/n)^n - 1) * 1e18.
// The power is evaluated by n rounds of fixed-point multiplication, each
// truncating toward zero.
func CalculateAPYFromAPR(apr *uint256.Int, periods uint64) (*uint256.Int, error) {
	if periods == 0 {
		return nil, ErrZeroPeriods
	}
	if periods > MaxPeriods {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPeriods, periods, MaxPeriods)
	}
	rate, overflow := new(uint256.Int).MulDivOverflow(apr, scale, bps)
	if overflow {
		return nil, fmt.Errorf("%w: apr %s", ErrOverflow, apr)
	}
	step := new(uint256.Int).Div(rate, uint256.NewInt(periods))
	factor, overflow := new(uint256.Int).AddOverflow(scale, step)
	if overflow {
		return nil, fmt.Errorf("%w: per-period factor", ErrOverflow)
	}

	acc := scale.Clone()
	for i := uint64(0); i < periods; i++ {
		if _, overflow = acc.MulDivOverflow(acc, factor, scale); overflow {
			return nil, fmt.Errorf("%w: compounding round %d", ErrOverflow, i)
		}
	}
	return acc.Sub(acc, scale), nil
}

// APYBasisPoints converts a 1e18-scaled APY into basis points, truncating.
func APYBasisPoints(apy *uint256.Int) *uint256.Int {
	out, _ := new(uint256.Int).MulDivOverflow(apy, bps, scale)
	return out
}
