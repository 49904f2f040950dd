package ledger

import (
	"github.com/holiman/uint256"
)

// sharePriceUnit is the share amount SharePrice is quoted for.
var sharePriceUnit = uint256.NewInt(1_000_000_000_000_000_000)

// TotalAssets returns idle plus staked assets.
func (l *Ledger) TotalAssets() *uint256.Int { return l.state.TotalAssets() }

// ConvertToShares returns floor(assets * (S + 1) / (T + 1)) where S is the
// share supply and T total assets. The single virtual share and asset make an
// empty vault convert 1:1.
func (l *Ledger) ConvertToShares(assets *uint256.Int) (*uint256.Int, error) {
	return l.toShares(assets, false)
}

// ConvertToAssets returns floor(shares * (T + 1) / (S + 1)).
func (l *Ledger) ConvertToAssets(shares *uint256.Int) (*uint256.Int, error) {
	return l.toAssets(shares, false)
}

// PreviewDeposit returns the shares minted for assets, rounded down.
func (l *Ledger) PreviewDeposit(assets *uint256.Int) (*uint256.Int, error) {
	return l.toShares(assets, false)
}

// PreviewMint returns the assets charged to mint shares, rounded up.
func (l *Ledger) PreviewMint(shares *uint256.Int) (*uint256.Int, error) {
	return l.toAssets(shares, true)
}

// PreviewWithdraw returns the shares burned to withdraw assets, rounded up.
func (l *Ledger) PreviewWithdraw(assets *uint256.Int) (*uint256.Int, error) {
	return l.toShares(assets, true)
}

// PreviewRedeem returns the assets paid for redeeming shares, rounded down.
func (l *Ledger) PreviewRedeem(shares *uint256.Int) (*uint256.Int, error) {
	return l.toAssets(shares, false)
}

// MaxDeposit returns the room left under the cap: cap - totalAssets, or 0
// once total assets reach or pass the cap. The receiver does not matter.
func (l *Ledger) MaxDeposit(Address) *uint256.Int {
	total := l.state.TotalAssets()
	if l.state.Cap.Gt(total) {
		return new(uint256.Int).Sub(&l.state.Cap, total)
	}
	return new(uint256.Int)
}

// MaxMint returns ConvertToShares(MaxDeposit(receiver)).
func (l *Ledger) MaxMint(receiver Address) (*uint256.Int, error) {
	return l.toShares(l.MaxDeposit(receiver), false)
}

// MaxRedeem returns min(balance(holder), ConvertToShares(idle)): a holder can
// never redeem more than the idle balance backs, whatever the share value.
func (l *Ledger) MaxRedeem(holder Address) (*uint256.Int, error) {
	backed, err := l.toShares(&l.state.IdleBalance, false)
	if err != nil {
		return nil, err
	}
	return minOf(l.shares.BalanceOf(holder), backed), nil
}

// MaxWithdraw returns ConvertToAssets(MaxRedeem(holder)).
func (l *Ledger) MaxWithdraw(holder Address) (*uint256.Int, error) {
	shares, err := l.MaxRedeem(holder)
	if err != nil {
		return nil, err
	}
	return l.toAssets(shares, false)
}

// SharePrice returns the assets 1e18 shares convert to.
func (l *Ledger) SharePrice() (*uint256.Int, error) {
	return l.toAssets(sharePriceUnit, false)
}

func (l *Ledger) toShares(assets *uint256.Int, roundUp bool) (*uint256.Int, error) {
	supply, err := checkedAdd(&l.shares.total, one)
	if err != nil {
		return nil, err
	}
	total, err := checkedAdd(l.state.TotalAssets(), one)
	if err != nil {
		return nil, err
	}
	return mulDiv(assets, supply, total, roundUp)
}

func (l *Ledger) toAssets(shares *uint256.Int, roundUp bool) (*uint256.Int, error) {
	supply, err := checkedAdd(&l.shares.total, one)
	if err != nil {
		return nil, err
	}
	total, err := checkedAdd(l.state.TotalAssets(), one)
	if err != nil {
		return nil, err
	}
	return mulDiv(shares, total, supply, roundUp)
}
