package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/rewards"
)

// Ledger couples the vault's asset state with its share ledger.
//
// Every mutating method validates all of its preconditions before touching
// state, so a returned error always means nothing changed. A Ledger is not
// safe for concurrent use.
type Ledger struct {
	state  VaultState
	shares *ShareLedger
}

// New returns an empty ledger with the given cap and target APR (bps).
func New(cap, targetAPR *uint256.Int) (*Ledger, error) {
	if targetAPR.GtUint64(rewards.MaxAPR) {
		return nil, fmt.Errorf("%w: %s bps", ErrAPRTooHigh, targetAPR)
	}
	l := &Ledger{shares: NewShareLedger()}
	l.state.Cap.Set(cap)
	l.state.TargetAPR.Set(targetAPR)
	return l, nil
}

// Restore rebuilds a ledger from persisted parts.
func Restore(state VaultState, shares *ShareLedger) (*Ledger, error) {
	if shares == nil {
		shares = NewShareLedger()
	}
	if err := shares.Validate(); err != nil {
		return nil, err
	}
	if _, overflow := new(uint256.Int).AddOverflow(&state.IdleBalance, &state.StakedTotal); overflow {
		return nil, fmt.Errorf("%w: idle + staked", ErrArithmeticOverflow)
	}
	return &Ledger{state: state, shares: shares}, nil
}

// Clone returns an independent deep copy.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{state: l.state, shares: l.shares.Clone()}
}

// State returns a copy of the asset state.
func (l *Ledger) State() VaultState { return l.state }

// Shares returns a copy of the share ledger.
func (l *Ledger) Shares() *ShareLedger { return l.shares.Clone() }

// TotalShares returns the share supply.
func (l *Ledger) TotalShares() *uint256.Int { return l.shares.TotalShares() }

// BalanceOf returns holder's share balance.
func (l *Ledger) BalanceOf(holder Address) *uint256.Int { return l.shares.BalanceOf(holder) }

// Allowance returns spender's remaining allowance over owner's shares.
func (l *Ledger) Allowance(owner, spender Address) *uint256.Int {
	return l.shares.Allowance(owner, spender)
}

// Summary returns a status view of the ledger.
func (l *Ledger) Summary() (Summary, error) {
	price, err := l.SharePrice()
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		State:       l.state,
		TotalAssets: *l.TotalAssets(),
		TotalShares: l.shares.total,
		Holders:     l.shares.Holders(),
		SharePrice:  *price,
	}, nil
}

// Deposit adds assets to the idle balance and mints shares to receiver at the
// current price, rounding down. It returns the shares minted.
func (l *Ledger) Deposit(assets *uint256.Int, receiver Address) (*uint256.Int, error) {
	if assets.IsZero() {
		return nil, ErrZeroAmount
	}
	if receiver.IsZero() {
		return nil, ErrZeroAddress
	}
	if room := l.MaxDeposit(receiver); assets.Gt(room) {
		return nil, fmt.Errorf("%w: deposit %s, room %s", ErrCapExceeded, assets, room)
	}
	shares, err := l.PreviewDeposit(assets)
	if err != nil {
		return nil, err
	}
	if shares.IsZero() {
		return nil, fmt.Errorf("%w: %s assets", ErrZeroShares, assets)
	}
	if err := l.credit(assets, shares, receiver); err != nil {
		return nil, err
	}
	return shares, nil
}

// Mint mints exactly shares to receiver and returns the assets charged,
// rounding up.
func (l *Ledger) Mint(shares *uint256.Int, receiver Address) (*uint256.Int, error) {
	if shares.IsZero() {
		return nil, ErrZeroAmount
	}
	if receiver.IsZero() {
		return nil, ErrZeroAddress
	}
	limit, err := l.MaxMint(receiver)
	if err != nil {
		return nil, err
	}
	if shares.Gt(limit) {
		return nil, fmt.Errorf("%w: mint %s, limit %s", ErrCapExceeded, shares, limit)
	}
	assets, err := l.PreviewMint(shares)
	if err != nil {
		return nil, err
	}
	if room := l.MaxDeposit(receiver); assets.Gt(room) {
		return nil, fmt.Errorf("%w: mint costs %s, room %s", ErrCapExceeded, assets, room)
	}
	if err := l.credit(assets, shares, receiver); err != nil {
		return nil, err
	}
	return assets, nil
}

func (l *Ledger) credit(assets, shares *uint256.Int, receiver Address) error {
	idle, err := checkedAdd(&l.state.IdleBalance, assets)
	if err != nil {
		return err
	}
	if _, err := checkedAdd(idle, &l.state.StakedTotal); err != nil {
		return err
	}
	if err := l.shares.mint(receiver, shares); err != nil {
		return err
	}
	l.state.IdleBalance = *idle
	return nil
}

// Withdraw burns the shares worth assets from owner, rounding up, and takes
// assets out of the idle balance. spender must be owner or hold an allowance.
// It returns the shares burned.
func (l *Ledger) Withdraw(assets *uint256.Int, owner, spender Address) (*uint256.Int, error) {
	if assets.IsZero() {
		return nil, ErrZeroAmount
	}
	shares, err := l.PreviewWithdraw(assets)
	if err != nil {
		return nil, err
	}
	limit, err := l.MaxWithdraw(owner)
	if err != nil {
		return nil, err
	}
	if assets.Gt(limit) {
		if shares.Gt(l.shares.BalanceOf(owner)) {
			return nil, fmt.Errorf("%w: withdraw %s needs %s shares", ErrInsufficientShares, assets, shares)
		}
		return nil, fmt.Errorf("%w: withdraw %s, limit %s", ErrInsufficientLiquidity, assets, limit)
	}
	if err := l.debit(assets, shares, owner, spender); err != nil {
		return nil, err
	}
	return shares, nil
}

// Redeem burns shares from owner and takes their value, rounded down, out of
// the idle balance. It returns the assets released.
func (l *Ledger) Redeem(shares *uint256.Int, owner, spender Address) (*uint256.Int, error) {
	if shares.IsZero() {
		return nil, ErrZeroAmount
	}
	limit, err := l.MaxRedeem(owner)
	if err != nil {
		return nil, err
	}
	if shares.Gt(limit) {
		if shares.Gt(l.shares.BalanceOf(owner)) {
			return nil, fmt.Errorf("%w: redeem %s", ErrInsufficientShares, shares)
		}
		return nil, fmt.Errorf("%w: redeem %s, limit %s", ErrInsufficientLiquidity, shares, limit)
	}
	assets, err := l.PreviewRedeem(shares)
	if err != nil {
		return nil, err
	}
	if assets.IsZero() {
		return nil, fmt.Errorf("%w: %s shares redeem for nothing", ErrZeroAmount, shares)
	}
	if err := l.debit(assets, shares, owner, spender); err != nil {
		return nil, err
	}
	return assets, nil
}

func (l *Ledger) debit(assets, shares *uint256.Int, owner, spender Address) error {
	idle, err := checkedSub(&l.state.IdleBalance, assets)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInsufficientLiquidity, err)
	}
	if owner != spender {
		cur := l.shares.Allowance(owner, spender)
		if !cur.Eq(maxUint256) && cur.Lt(shares) {
			return fmt.Errorf("%w: %s approved %s, needs %s", ErrInsufficientAllowance, spender, cur, shares)
		}
	}
	if bal := l.shares.BalanceOf(owner); bal.Lt(shares) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientShares, owner, bal, shares)
	}
	// Preconditions hold; the share ledger calls below cannot fail.
	if err := l.shares.spendAllowance(owner, spender, shares); err != nil {
		return err
	}
	if err := l.shares.burn(owner, shares); err != nil {
		return err
	}
	l.state.IdleBalance = *idle
	return nil
}

// Stake moves amount from the idle balance to the staked total.
func (l *Ledger) Stake(amount *uint256.Int) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	idle, err := checkedSub(&l.state.IdleBalance, amount)
	if err != nil {
		return fmt.Errorf("%w: stake %s, idle %s", ErrInsufficientLiquidity, amount, &l.state.IdleBalance)
	}
	staked, err := checkedAdd(&l.state.StakedTotal, amount)
	if err != nil {
		return err
	}
	l.state.IdleBalance = *idle
	l.state.StakedTotal = *staked
	return nil
}

// AccrueRewards books one period of yield on the current staked total:
// TargetAPR * StakedTotal / 10000 / PeriodsPerYear. No tokens move; the
// reward raises total assets and with it the share price.
//
// The reward is computed on the staked total as it stands, which already
// includes rewards booked by earlier calls. Calling it twice in one period
// therefore books two compounding rewards. Callers own the cadence.
func (l *Ledger) AccrueRewards() (*uint256.Int, error) {
	reward, err := rewards.PreviewRewardsAtStakedAmount(&l.state.TargetAPR, &l.state.StakedTotal, rewards.PeriodsPerYear)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArithmeticOverflow, err)
	}
	staked, err := checkedAdd(&l.state.StakedTotal, reward)
	if err != nil {
		return nil, err
	}
	if _, err := checkedAdd(staked, &l.state.IdleBalance); err != nil {
		return nil, err
	}
	l.state.StakedTotal = *staked
	return reward, nil
}

// PreviewRewards returns the reward AccrueRewards would book for stake at
// the current target APR.
func (l *Ledger) PreviewRewards(stake *uint256.Int) (*uint256.Int, error) {
	reward, err := rewards.PreviewRewardsAtStakedAmount(&l.state.TargetAPR, stake, rewards.PeriodsPerYear)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArithmeticOverflow, err)
	}
	return reward, nil
}

// DepositFromStaking moves amount from the staked total back to the idle
// balance. Amounts above the staked total are rejected, never clamped.
func (l *Ledger) DepositFromStaking(amount *uint256.Int) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	if amount.Gt(&l.state.StakedTotal) {
		return fmt.Errorf("%w: %s > %s", ErrExceedsStaked, amount, &l.state.StakedTotal)
	}
	idle, err := checkedAdd(&l.state.IdleBalance, amount)
	if err != nil {
		return err
	}
	l.state.StakedTotal.Sub(&l.state.StakedTotal, amount)
	l.state.IdleBalance = *idle
	return nil
}

// SetCap replaces the deposit cap. Lowering it below total assets is allowed;
// deposits stop until assets fall back under it.
func (l *Ledger) SetCap(cap *uint256.Int) {
	l.state.Cap.Set(cap)
}

// SetTargetAPR replaces the target APR in basis points.
func (l *Ledger) SetTargetAPR(apr *uint256.Int) error {
	if apr.GtUint64(rewards.MaxAPR) {
		return fmt.Errorf("%w: %s bps", ErrAPRTooHigh, apr)
	}
	l.state.TargetAPR.Set(apr)
	return nil
}

// Transfer moves shares from one holder to another.
func (l *Ledger) Transfer(from, to Address, amount *uint256.Int) error {
	return l.shares.transfer(from, to, amount)
}

// Approve sets spender's allowance over owner's shares.
func (l *Ledger) Approve(owner, spender Address, amount *uint256.Int) error {
	return l.shares.approve(owner, spender, amount)
}

// TransferFrom moves shares on behalf of from, spending spender's allowance.
func (l *Ledger) TransferFrom(spender, from, to Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if bal := l.shares.BalanceOf(from); bal.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientShares, from, bal, amount)
	}
	if err := l.shares.spendAllowance(from, spender, amount); err != nil {
		return err
	}
	return l.shares.transfer(from, to, amount)
}
