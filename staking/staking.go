// Package staking implements an in-memory node staking contract. Stakers
// deposit on behalf of node operators; the contract pulls the tokens from
// the staker, which must have approved it beforehand.
package staking

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/vault"
)

// NodeStaking tracks stake per node operator. It is safe for concurrent use.
type NodeStaking struct {
	address ledger.Address
	token   vault.TokenTransfer // acts as address

	mu     sync.Mutex
	stakes map[ledger.Address]uint256.Int
	total  uint256.Int
}

// New returns a contract at address moving tokens through token, which must
// act as address.
func New(address ledger.Address, token vault.TokenTransfer) *NodeStaking {
	return &NodeStaking{
		address: address,
		token:   token,
		stakes:  make(map[ledger.Address]uint256.Int),
	}
}

// Address returns the contract's own account.
func (n *NodeStaking) Address() ledger.Address { return n.address }

// StakeOf returns the stake held for operator.
func (n *NodeStaking) StakeOf(operator ledger.Address) *uint256.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	s := n.stakes[operator]
	return s.Clone()
}

// TotalStaked returns the stake held across all operators.
func (n *NodeStaking) TotalStaked() *uint256.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.total.Clone()
}

// Caller returns a handle staking as staker.
func (n *NodeStaking) Caller(staker ledger.Address) *Caller {
	return &Caller{contract: n, staker: staker}
}

// Binder returns a vault.StakingBinder that binds staker to this contract
// and rejects every other address.
func (n *NodeStaking) Binder(staker ledger.Address) vault.StakingBinder {
	return func(addr ledger.Address) (vault.Staking, error) {
		if addr != n.address {
			return nil, fmt.Errorf("%w: %s", ErrUnknownContract, addr)
		}
		return n.Caller(staker), nil
	}
}

// Withdraw releases amount of operator's stake to to.
func (n *NodeStaking) Withdraw(ctx context.Context, operator ledger.Address, amount *uint256.Int, to ledger.Address) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	cur := n.stakes[operator]
	if cur.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, requested %s", ErrInsufficientStake, operator, &cur, amount)
	}
	if err := n.token.Transfer(ctx, to, amount); err != nil {
		return err
	}
	n.setStake(operator, new(uint256.Int).Sub(&cur, amount))
	n.total.Sub(&n.total, amount)
	return nil
}

func (n *NodeStaking) stake(ctx context.Context, staker, operator ledger.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.token.TransferFrom(ctx, staker, n.address, amount); err != nil {
		return err
	}
	// Bounded by token supply, so these sums cannot overflow.
	cur := n.stakes[operator]
	n.setStake(operator, new(uint256.Int).Add(&cur, amount))
	n.total.Add(&n.total, amount)
	return nil
}

func (n *NodeStaking) setStake(operator ledger.Address, amount *uint256.Int) {
	if amount.IsZero() {
		delete(n.stakes, operator)
		return
	}
	n.stakes[operator] = *amount
}

// Caller is a NodeStaking seen from one staker.
type Caller struct {
	contract *NodeStaking
	staker   ledger.Address
}

var _ vault.Staking = (*Caller)(nil)

// StakeOnBehalfOf pulls amount from the staker and credits it to operator.
func (c *Caller) StakeOnBehalfOf(ctx context.Context, operator ledger.Address, amount *uint256.Int) error {
	return c.contract.stake(ctx, c.staker, operator, amount)
}
