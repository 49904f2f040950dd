package vault

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/ledger"
)

// Deposit takes assets from caller and mints shares to receiver. It returns
// the shares minted.
func (v *Vault) Deposit(ctx context.Context, caller ledger.Address, assets *uint256.Int, receiver ledger.Address) (*uint256.Int, error) {
	var shares *uint256.Int
	err := v.withWriteLock(ctx, EventDeposit, caller, func(ctx context.Context, l *ledger.Ledger) ([]Event, error) {
		var err error
		if shares, err = l.Deposit(assets, receiver); err != nil {
			return nil, err
		}
		if err := v.pull(ctx, caller, assets); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventDeposit, Receiver: receiver, Amount: assets.Clone(), Shares: shares.Clone()}}, nil
	})
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// Mint mints exactly shares to receiver, taking the rounded-up asset cost
// from caller. It returns the assets charged.
func (v *Vault) Mint(ctx context.Context, caller ledger.Address, shares *uint256.Int, receiver ledger.Address) (*uint256.Int, error) {
	var assets *uint256.Int
	err := v.withWriteLock(ctx, EventMint, caller, func(ctx context.Context, l *ledger.Ledger) ([]Event, error) {
		var err error
		if assets, err = l.Mint(shares, receiver); err != nil {
			return nil, err
		}
		if err := v.pull(ctx, caller, assets); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventMint, Receiver: receiver, Amount: assets.Clone(), Shares: shares.Clone()}}, nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// Withdraw burns owner's shares worth assets and sends assets to receiver.
// A caller other than owner spends its share allowance. It returns the
// shares burned.
func (v *Vault) Withdraw(ctx context.Context, caller ledger.Address, assets *uint256.Int, receiver, owner ledger.Address) (*uint256.Int, error) {
	var shares *uint256.Int
	err := v.withWriteLock(ctx, EventWithdraw, caller, func(ctx context.Context, l *ledger.Ledger) ([]Event, error) {
		if receiver.IsZero() {
			return nil, ledger.ErrZeroAddress
		}
		var err error
		if shares, err = l.Withdraw(assets, owner, caller); err != nil {
			return nil, err
		}
		if err := v.push(ctx, receiver, assets); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventWithdraw, Receiver: receiver, Owner: owner, Amount: assets.Clone(), Shares: shares.Clone()}}, nil
	})
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// Redeem burns shares from owner and sends their value to receiver. It
// returns the assets paid.
func (v *Vault) Redeem(ctx context.Context, caller ledger.Address, shares *uint256.Int, receiver, owner ledger.Address) (*uint256.Int, error) {
	var assets *uint256.Int
	err := v.withWriteLock(ctx, EventRedeem, caller, func(ctx context.Context, l *ledger.Ledger) ([]Event, error) {
		if receiver.IsZero() {
			return nil, ledger.ErrZeroAddress
		}
		var err error
		if assets, err = l.Redeem(shares, owner, caller); err != nil {
			return nil, err
		}
		if err := v.push(ctx, receiver, assets); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventRedeem, Receiver: receiver, Owner: owner, Amount: assets.Clone(), Shares: shares.Clone()}}, nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// Transfer moves vault shares from caller to to.
func (v *Vault) Transfer(ctx context.Context, caller, to ledger.Address, shares *uint256.Int) error {
	return v.withWriteLock(ctx, EventTransfer, caller, func(_ context.Context, l *ledger.Ledger) ([]Event, error) {
		if err := l.Transfer(caller, to, shares); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventTransfer, Owner: caller, Receiver: to, Shares: shares.Clone()}}, nil
	})
}

// TransferFrom moves vault shares from owner to to, spending caller's allowance.
func (v *Vault) TransferFrom(ctx context.Context, caller, owner, to ledger.Address, shares *uint256.Int) error {
	return v.withWriteLock(ctx, EventTransfer, caller, func(_ context.Context, l *ledger.Ledger) ([]Event, error) {
		if err := l.TransferFrom(caller, owner, to, shares); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventTransfer, Owner: owner, Receiver: to, Shares: shares.Clone()}}, nil
	})
}

// Approve sets spender's allowance over caller's shares.
func (v *Vault) Approve(ctx context.Context, caller, spender ledger.Address, shares *uint256.Int) error {
	return v.withWriteLock(ctx, EventApprove, caller, func(_ context.Context, l *ledger.Ledger) ([]Event, error) {
		if err := l.Approve(caller, spender, shares); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventApprove, Owner: caller, Receiver: spender, Shares: shares.Clone()}}, nil
	})
}

// pull moves amount from caller into the vault's token account.
func (v *Vault) pull(ctx context.Context, from ledger.Address, amount *uint256.Int) error {
	if err := v.collab.Token.TransferFrom(ctx, from, v.self, amount); err != nil {
		return fmt.Errorf("%w: pull %s from %s: %w", ErrTransferFailed, amount, from, err)
	}
	return nil
}

// push sends amount from the vault's token account to to.
func (v *Vault) push(ctx context.Context, to ledger.Address, amount *uint256.Int) error {
	if err := v.collab.Token.Transfer(ctx, to, amount); err != nil {
		return fmt.Errorf("%w: send %s to %s: %w", ErrTransferFailed, amount, to, err)
	}
	return nil
}
