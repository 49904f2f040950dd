// Package ledger implements the vault's accounting core: the three-part asset
// ledger (idle, staked, cap), the share ledger, ERC4626 conversions and bound
// functions, and the state transitions that move assets between them.
//
// The package performs no I/O and calls no collaborators. Callers that need
// authorization, token movement or staking wrap it (see package vault).
package ledger

import (
	"github.com/holiman/uint256"
)

// VaultState is the asset side of the vault. All amounts are in asset units;
// TargetAPR is in basis points.
type VaultState struct {
	IdleBalance uint256.Int // assets physically held by the vault
	StakedTotal uint256.Int // assets out at stake, including accrued rewards
	Cap         uint256.Int // maximum total assets accepted via deposit/mint
	TargetAPR   uint256.Int // basis points
}

// TotalAssets returns IdleBalance + StakedTotal.
// Every transition keeps the sum within 256 bits.
func (s *VaultState) TotalAssets() *uint256.Int {
	return new(uint256.Int).Add(&s.IdleBalance, &s.StakedTotal)
}

// Summary is a read-only view of the ledger for status reporting.
type Summary struct {
	State       VaultState
	TotalAssets uint256.Int
	TotalShares uint256.Int
	Holders     int
	SharePrice  uint256.Int // assets redeemable for 1e18 shares
}
