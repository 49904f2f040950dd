package vault

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/ledger"
)

// StakeOnNode moves amount of idle assets to the staking contract on behalf
// of operator. The caller must be the owner or hold RoleProtocol, and the
// operator must be registered.
func (v *Vault) StakeOnNode(ctx context.Context, caller ledger.Address, amount *uint256.Int, operator ledger.Address) error {
	return v.withWriteLock(ctx, EventStake, caller, func(ctx context.Context, l *ledger.Ledger) ([]Event, error) {
		if err := v.requireProtocol(caller); err != nil {
			return nil, err
		}
		ev, err := v.stake(ctx, l, amount, operator)
		if err != nil {
			return nil, err
		}
		return []Event{ev}, nil
	})
}

// AccrueRewards books one period of rewards on the staked total and returns
// the reward. Each call compounds on rewards booked before it.
func (v *Vault) AccrueRewards(ctx context.Context, caller ledger.Address) (*uint256.Int, error) {
	var reward *uint256.Int
	err := v.withWriteLock(ctx, EventAccrue, caller, func(_ context.Context, l *ledger.Ledger) ([]Event, error) {
		if err := v.requireProtocol(caller); err != nil {
			return nil, err
		}
		ev, err := accrue(l)
		if err != nil {
			return nil, err
		}
		reward = ev.Reward
		return []Event{ev}, nil
	})
	if err != nil {
		return nil, err
	}
	return reward.Clone(), nil
}

// StakeAndAccrue stakes amount on operator and then accrues rewards, as one
// operation. It returns the reward booked.
func (v *Vault) StakeAndAccrue(ctx context.Context, caller ledger.Address, amount *uint256.Int, operator ledger.Address) (*uint256.Int, error) {
	var reward *uint256.Int
	err := v.withWriteLock(ctx, EventStakeAndAccrue, caller, func(ctx context.Context, l *ledger.Ledger) ([]Event, error) {
		if err := v.requireProtocol(caller); err != nil {
			return nil, err
		}
		staked, err := v.stake(ctx, l, amount, operator)
		if err != nil {
			return nil, err
		}
		accrued, err := accrue(l)
		if err != nil {
			return nil, err
		}
		reward = accrued.Reward
		return []Event{staked, accrued}, nil
	})
	if err != nil {
		return nil, err
	}
	return reward.Clone(), nil
}

// DepositFromStaking returns amount from the staked total to the idle
// balance, pulling the tokens from caller. Amounts above the staked total are
// rejected with ledger.ErrExceedsStaked.
func (v *Vault) DepositFromStaking(ctx context.Context, caller ledger.Address, amount *uint256.Int) error {
	return v.withWriteLock(ctx, EventDepositFromStaking, caller, func(ctx context.Context, l *ledger.Ledger) ([]Event, error) {
		if err := v.requireProtocol(caller); err != nil {
			return nil, err
		}
		if err := l.DepositFromStaking(amount); err != nil {
			return nil, err
		}
		if err := v.pull(ctx, caller, amount); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventDepositFromStaking, Amount: amount.Clone()}}, nil
	})
}

// SetCap replaces the deposit cap. Owner only.
func (v *Vault) SetCap(ctx context.Context, caller ledger.Address, cap *uint256.Int) error {
	return v.withWriteLock(ctx, EventSetCap, caller, func(_ context.Context, l *ledger.Ledger) ([]Event, error) {
		if err := v.requireOwner(caller); err != nil {
			return nil, err
		}
		l.SetCap(cap)
		return []Event{{Kind: EventSetCap, Amount: cap.Clone()}}, nil
	})
}

// SetTargetAPR replaces the target APR in basis points. Owner only.
func (v *Vault) SetTargetAPR(ctx context.Context, caller ledger.Address, apr *uint256.Int) error {
	return v.withWriteLock(ctx, EventSetTargetAPR, caller, func(_ context.Context, l *ledger.Ledger) ([]Event, error) {
		if err := v.requireOwner(caller); err != nil {
			return nil, err
		}
		if err := l.SetTargetAPR(apr); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventSetTargetAPR, Amount: apr.Clone()}}, nil
	})
}

// stake applies a stake to l and then hands the tokens to the staking
// contract. Guards and the directory lookup run before l is touched.
func (v *Vault) stake(ctx context.Context, l *ledger.Ledger, amount *uint256.Int, operator ledger.Address) (Event, error) {
	if !v.collab.Operators.IsRegisteredOperator(operator) {
		return Event{}, fmt.Errorf("%w: %s", ErrUnknownOperator, operator)
	}
	contract, err := v.collab.Directory.GetAddress(ctx, v.stakingKey)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %s: %w", ErrDirectoryLookup, v.stakingName, err)
	}
	if contract.IsZero() {
		return Event{}, fmt.Errorf("%w: %s is not registered", ErrDirectoryLookup, v.stakingName)
	}
	staking, err := v.collab.Staking(contract)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bind %s: %w", ErrStakingFailed, contract, err)
	}

	if err := l.Stake(amount); err != nil {
		return Event{}, err
	}
	if err := v.collab.Token.Approve(ctx, contract, amount); err != nil {
		return Event{}, fmt.Errorf("%w: approve %s for %s: %w", ErrTransferFailed, contract, amount, err)
	}
	if err := staking.StakeOnBehalfOf(ctx, operator, amount); err != nil {
		return Event{}, fmt.Errorf("%w: %s on %s: %w", ErrStakingFailed, amount, operator, err)
	}
	return Event{Kind: EventStake, Operator: operator, Receiver: contract, Amount: amount.Clone()}, nil
}

func accrue(l *ledger.Ledger) (Event, error) {
	reward, err := l.AccrueRewards()
	if err != nil {
		return Event{}, err
	}
	st := l.State()
	return Event{Kind: EventAccrue, Amount: st.StakedTotal.Clone(), Reward: reward}, nil
}

func (v *Vault) requireOwner(caller ledger.Address) error {
	if !v.collab.Auth.IsOwner(caller) {
		return fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
	}
	return nil
}

func (v *Vault) requireProtocol(caller ledger.Address) error {
	if v.collab.Auth.IsOwner(caller) || v.collab.Auth.HasRole(RoleProtocol, caller) {
		return nil
	}
	return fmt.Errorf("%w: %s lacks %s role", ErrUnauthorized, caller, RoleProtocol)
}
