package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
)

var one = uint256.NewInt(1)

// checkedAdd returns x + y or ErrArithmeticOverflow.
func checkedAdd(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("%w: %s + %s", ErrArithmeticOverflow, x, y)
	}
	return z, nil
}

// checkedSub returns x - y or ErrArithmeticUnderflow.
func checkedSub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, fmt.Errorf("%w: %s - %s", ErrArithmeticUnderflow, x, y)
	}
	return z, nil
}

// mulDiv returns x * y / d with a 512-bit intermediate product, rounding
// toward zero, or away from zero when roundUp is set and a remainder exists.
// d must be non-zero.
func mulDiv(x, y, d *uint256.Int, roundUp bool) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s / %s", ErrArithmeticOverflow, x, y, d)
	}
	if roundUp && !new(uint256.Int).MulMod(x, y, d).IsZero() {
		if _, overflow = z.AddOverflow(z, one); overflow {
			return nil, fmt.Errorf("%w: rounding %s * %s / %s", ErrArithmeticOverflow, x, y, d)
		}
	}
	return z, nil
}

// minOf returns a copy of the smaller of x and y.
func minOf(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x.Clone()
	}
	return y.Clone()
}
