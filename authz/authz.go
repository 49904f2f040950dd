// Package authz provides a static, in-memory access-control table for a
// vault: one owner, role grants and the node operator registry.
package authz

import (
	"sync"

	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/vault"
)

// Static answers vault.Authorizer and vault.OperatorRegistry queries from
// in-memory tables. It is safe for concurrent use.
type Static struct {
	mu        sync.RWMutex
	owner     ledger.Address
	roles     map[vault.Role]map[ledger.Address]struct{}
	operators map[ledger.Address]struct{}
}

var (
	_ vault.Authorizer       = (*Static)(nil)
	_ vault.OperatorRegistry = (*Static)(nil)
)

// NewStatic returns a table owned by owner with no grants.
func NewStatic(owner ledger.Address) *Static {
	return &Static{
		owner:     owner,
		roles:     make(map[vault.Role]map[ledger.Address]struct{}),
		operators: make(map[ledger.Address]struct{}),
	}
}

// IsOwner reports whether caller is the owner. The zero address never is.
func (s *Static) IsOwner(caller ledger.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !caller.IsZero() && caller == s.owner
}

// HasRole reports whether caller was granted role.
func (s *Static) HasRole(role vault.Role, caller ledger.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roles[role][caller]
	return ok
}

// IsRegisteredOperator reports whether operator may receive stake.
func (s *Static) IsRegisteredOperator(operator ledger.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.operators[operator]
	return ok
}

// Owner returns the current owner.
func (s *Static) Owner() ledger.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// TransferOwnership replaces the owner.
func (s *Static) TransferOwnership(owner ledger.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = owner
}

// Grant gives role to each account.
func (s *Static) Grant(role vault.Role, accounts ...ledger.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	holders := s.roles[role]
	if holders == nil {
		holders = make(map[ledger.Address]struct{})
		s.roles[role] = holders
	}
	for _, a := range accounts {
		if !a.IsZero() {
			holders[a] = struct{}{}
		}
	}
}

// Revoke removes role from account.
func (s *Static) Revoke(role vault.Role, account ledger.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles[role], account)
}

// RegisterOperators adds node operators to the registry.
func (s *Static) RegisterOperators(operators ...ledger.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range operators {
		if !op.IsZero() {
			s.operators[op] = struct{}{}
		}
	}
}

// DeregisterOperator removes a node operator from the registry.
func (s *Static) DeregisterOperator(operator ledger.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.operators, operator)
}
