// Package token implements an in-memory fungible token with ERC20 transfer
// and allowance semantics. It stands in for the staking token in tests and
// local runs.
package token

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/vault"
)

var maxAllowance = new(uint256.Int).SetAllOne()

type allowanceKey struct {
	owner, spender ledger.Address
}

// Ledger holds token balances and allowances. It is safe for concurrent use.
type Ledger struct {
	mu         sync.Mutex
	supply     uint256.Int
	balances   map[ledger.Address]uint256.Int
	allowances map[allowanceKey]uint256.Int
}

// NewLedger returns a token with no supply.
func NewLedger() *Ledger {
	return &Ledger{
		balances:   make(map[ledger.Address]uint256.Int),
		allowances: make(map[allowanceKey]uint256.Int),
	}
}

// Mint creates amount new tokens for to.
func (l *Ledger) Mint(to ledger.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	supply, overflow := new(uint256.Int).AddOverflow(&l.supply, amount)
	if overflow {
		return ErrOverflow
	}
	bal := l.balances[to]
	bal.Add(&bal, amount)
	l.balances[to] = bal
	l.supply = *supply
	return nil
}

// TotalSupply returns the amount in circulation.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supply.Clone()
}

// BalanceOf returns holder's balance.
func (l *Ledger) BalanceOf(holder ledger.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balances[holder]
	return bal.Clone()
}

// Allowance returns what spender may still move from owner.
func (l *Ledger) Allowance(owner, spender ledger.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := l.allowances[allowanceKey{owner, spender}]
	return a.Clone()
}

// Account returns a handle that acts as sender.
func (l *Ledger) Account(sender ledger.Address) *Account {
	return &Account{token: l, sender: sender}
}

func (l *Ledger) transfer(from, to ledger.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	fromBal := l.balances[from]
	if fromBal.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from, &fromBal, amount)
	}
	fromBal.Sub(&fromBal, amount)
	l.balances[from] = fromBal
	// Cannot overflow: the sum of balances equals the supply.
	toBal := l.balances[to]
	toBal.Add(&toBal, amount)
	l.balances[to] = toBal
	return nil
}

func (l *Ledger) spendAllowance(owner, spender ledger.Address, amount *uint256.Int) error {
	k := allowanceKey{owner, spender}
	cur := l.allowances[k]
	if cur.Eq(maxAllowance) {
		return nil
	}
	if cur.Lt(amount) {
		return fmt.Errorf("%w: %s approved %s, needs %s", ErrInsufficientAllowance, spender, &cur, amount)
	}
	cur.Sub(&cur, amount)
	l.allowances[k] = cur
	return nil
}

// Account is a Ledger seen from one sender's account.
type Account struct {
	token  *Ledger
	sender ledger.Address
}

var _ vault.TokenTransfer = (*Account)(nil)

// Address returns the sender the handle acts as.
func (a *Account) Address() ledger.Address { return a.sender }

// Transfer moves amount from the sender to to.
func (a *Account) Transfer(_ context.Context, to ledger.Address, amount *uint256.Int) error {
	a.token.mu.Lock()
	defer a.token.mu.Unlock()
	return a.token.transfer(a.sender, to, amount)
}

// TransferFrom moves amount from from to to, spending the sender's allowance.
func (a *Account) TransferFrom(_ context.Context, from, to ledger.Address, amount *uint256.Int) error {
	a.token.mu.Lock()
	defer a.token.mu.Unlock()
	fromBal := a.token.balances[from]
	if fromBal.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from, &fromBal, amount)
	}
	if to.IsZero() {
		return ErrZeroAddress
	}
	if from != a.sender {
		if err := a.token.spendAllowance(from, a.sender, amount); err != nil {
			return err
		}
	}
	return a.token.transfer(from, to, amount)
}

// Approve sets spender's allowance over the sender's balance.
func (a *Account) Approve(_ context.Context, spender ledger.Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return ErrZeroAddress
	}
	a.token.mu.Lock()
	defer a.token.mu.Unlock()
	a.token.allowances[allowanceKey{a.sender, spender}] = *amount
	return nil
}

// BalanceOf returns holder's balance.
func (a *Account) BalanceOf(_ context.Context, holder ledger.Address) (*uint256.Int, error) {
	return a.token.BalanceOf(holder), nil
}
