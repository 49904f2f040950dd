package ledger

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/holiman/uint256"
)

// ShareEntry is one holder's record in the share ledger.
type ShareEntry struct {
	Address Address
	Balance uint256.Int
}

// AllowanceEntry records how many of Owner's shares Spender may move.
type AllowanceEntry struct {
	Owner   Address
	Spender Address
	Amount  uint256.Int
}

type allowanceKey struct {
	owner, spender Address
}

// ShareLedger tracks vault share balances and allowances.
// Zero balances and zero allowances are never stored.
type ShareLedger struct {
	total      uint256.Int
	balances   map[Address]uint256.Int
	allowances map[allowanceKey]uint256.Int
}

// NewShareLedger returns an empty share ledger.
func NewShareLedger() *ShareLedger {
	return &ShareLedger{
		balances:   make(map[Address]uint256.Int),
		allowances: make(map[allowanceKey]uint256.Int),
	}
}

// TotalShares returns the number of shares in existence.
func (s *ShareLedger) TotalShares() *uint256.Int { return s.total.Clone() }

// BalanceOf returns holder's share balance.
func (s *ShareLedger) BalanceOf(holder Address) *uint256.Int {
	b := s.balances[holder]
	return b.Clone()
}

// Allowance returns how many of owner's shares spender may transfer.
func (s *ShareLedger) Allowance(owner, spender Address) *uint256.Int {
	a := s.allowances[allowanceKey{owner, spender}]
	return a.Clone()
}

// Holders returns the number of addresses with a non-zero balance.
func (s *ShareLedger) Holders() int { return len(s.balances) }

// Entries returns all non-zero balances ordered by address.
func (s *ShareLedger) Entries() []ShareEntry {
	entries := make([]ShareEntry, 0, len(s.balances))
	for addr, bal := range s.balances {
		entries = append(entries, ShareEntry{Address: addr, Balance: bal})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Address[:], entries[j].Address[:]) < 0
	})
	return entries
}

// Allowances returns all non-zero allowances ordered by owner then spender.
func (s *ShareLedger) Allowances() []AllowanceEntry {
	out := make([]AllowanceEntry, 0, len(s.allowances))
	for k, amt := range s.allowances {
		out = append(out, AllowanceEntry{Owner: k.owner, Spender: k.spender, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := bytes.Compare(out[i].Owner[:], out[j].Owner[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(out[i].Spender[:], out[j].Spender[:]) < 0
	})
	return out
}

// Clone returns a deep copy.
func (s *ShareLedger) Clone() *ShareLedger {
	c := &ShareLedger{
		total:      s.total,
		balances:   make(map[Address]uint256.Int, len(s.balances)),
		allowances: make(map[allowanceKey]uint256.Int, len(s.allowances)),
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.allowances {
		c.allowances[k] = v
	}
	return c
}

// mint credits amount new shares to holder.
func (s *ShareLedger) mint(holder Address, amount *uint256.Int) error {
	if holder.IsZero() {
		return ErrZeroAddress
	}
	total, err := checkedAdd(&s.total, amount)
	if err != nil {
		return err
	}
	cur := s.balances[holder]
	bal, err := checkedAdd(&cur, amount)
	if err != nil {
		return err
	}
	s.total = *total
	s.setBalance(holder, bal)
	return nil
}

// burn destroys amount of holder's shares.
func (s *ShareLedger) burn(holder Address, amount *uint256.Int) error {
	cur := s.balances[holder]
	if cur.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientShares, holder, &cur, amount)
	}
	total, err := checkedSub(&s.total, amount)
	if err != nil {
		return err
	}
	s.total = *total
	s.setBalance(holder, new(uint256.Int).Sub(&cur, amount))
	return nil
}

// transfer moves amount shares between holders; total supply is unchanged.
func (s *ShareLedger) transfer(from, to Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	fromBal := s.balances[from]
	if fromBal.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientShares, from, &fromBal, amount)
	}
	if from == to {
		return nil
	}
	toBal := s.balances[to]
	credited, err := checkedAdd(&toBal, amount)
	if err != nil {
		return err
	}
	s.setBalance(from, new(uint256.Int).Sub(&fromBal, amount))
	s.setBalance(to, credited)
	return nil
}

// approve sets spender's allowance over owner's shares.
func (s *ShareLedger) approve(owner, spender Address, amount *uint256.Int) error {
	if owner.IsZero() || spender.IsZero() {
		return ErrZeroAddress
	}
	k := allowanceKey{owner, spender}
	if amount.IsZero() {
		delete(s.allowances, k)
		return nil
	}
	s.allowances[k] = *amount
	return nil
}

// spendAllowance consumes amount of spender's allowance over owner's shares.
// An owner spending its own shares and an all-ones allowance are not metered.
func (s *ShareLedger) spendAllowance(owner, spender Address, amount *uint256.Int) error {
	if owner == spender {
		return nil
	}
	k := allowanceKey{owner, spender}
	cur := s.allowances[k]
	if cur.Eq(maxUint256) {
		return nil
	}
	if cur.Lt(amount) {
		return fmt.Errorf("%w: %s approved %s, needs %s", ErrInsufficientAllowance, spender, &cur, amount)
	}
	return s.approve(owner, spender, new(uint256.Int).Sub(&cur, amount))
}

func (s *ShareLedger) setBalance(holder Address, bal *uint256.Int) {
	if bal.IsZero() {
		delete(s.balances, holder)
		return
	}
	s.balances[holder] = *bal
}

// Validate checks that holder balances sum to the total supply.
func (s *ShareLedger) Validate() error {
	var sum uint256.Int
	for addr, bal := range s.balances {
		if bal.IsZero() {
			return fmt.Errorf("%w: zero balance stored for %s", ErrShareConservationViolation, addr)
		}
		if _, overflow := sum.AddOverflow(&sum, &bal); overflow {
			return fmt.Errorf("%w: balances overflow", ErrShareConservationViolation)
		}
	}
	if !sum.Eq(&s.total) {
		return fmt.Errorf("%w: balances=%s total=%s", ErrShareConservationViolation, &sum, &s.total)
	}
	return nil
}

var maxUint256 = new(uint256.Int).SetAllOne()
