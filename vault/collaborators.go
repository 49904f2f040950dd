package vault

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/ledger"
)

//go:generate mockgen -destination=./authorizer_mock.go -package=vault . Authorizer

// Role names a permission granted by the Authorizer.
type Role string

// RoleProtocol may stake, accrue rewards and reconcile staking returns.
const RoleProtocol Role = "protocol"

// Authorizer answers access-control questions. Both methods are pure guards
// evaluated before any state changes.
type Authorizer interface {
	IsOwner(caller ledger.Address) bool
	HasRole(role Role, caller ledger.Address) bool
}

// OperatorRegistry reports which node operators may receive stake.
type OperatorRegistry interface {
	IsRegisteredOperator(operator ledger.Address) bool
}

// TokenTransfer is the staking token as seen from the vault's own account.
// TransferFrom spends an allowance granted to the vault; Transfer and
// Approve act on the vault's balance.
type TokenTransfer interface {
	TransferFrom(ctx context.Context, from, to ledger.Address, amount *uint256.Int) error
	Transfer(ctx context.Context, to ledger.Address, amount *uint256.Int) error
	Approve(ctx context.Context, spender ledger.Address, amount *uint256.Int) error
	BalanceOf(ctx context.Context, holder ledger.Address) (*uint256.Int, error)
}

// Staking is the node staking contract. It pulls amount from the vault,
// which approves it beforehand.
type Staking interface {
	StakeOnBehalfOf(ctx context.Context, operator ledger.Address, amount *uint256.Int) error
}

// StakingBinder returns the staking contract deployed at addr.
type StakingBinder func(addr ledger.Address) (Staking, error)

// Directory is the storage directory contracts are registered in.
type Directory interface {
	GetAddress(ctx context.Context, key [32]byte) (ledger.Address, error)
}

// Store persists committed ledger state together with the operation's
// events. Commit assigns each event its sequence number.
type Store interface {
	Commit(l *ledger.Ledger, events []Event) error
}

// Observer receives the outcome of every operation.
type Observer interface {
	ObserveOp(kind EventKind, err error)
	ObserveSummary(s ledger.Summary)
}

// Collaborators bundles the external services a Vault calls.
type Collaborators struct {
	Auth      Authorizer
	Operators OperatorRegistry
	Token     TokenTransfer
	Directory Directory
	Staking   StakingBinder
}

func (c Collaborators) validate() error {
	switch {
	case c.Auth == nil:
		return fmt.Errorf("%w: authorizer", ErrMissingCollaborator)
	case c.Operators == nil:
		return fmt.Errorf("%w: operator registry", ErrMissingCollaborator)
	case c.Token == nil:
		return fmt.Errorf("%w: token", ErrMissingCollaborator)
	case c.Directory == nil:
		return fmt.Errorf("%w: directory", ErrMissingCollaborator)
	case c.Staking == nil:
		return fmt.Errorf("%w: staking binder", ErrMissingCollaborator)
	}
	return nil
}
