package vault

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/ledger"
)

// MockOperatorRegistry is a test double for OperatorRegistry.
type MockOperatorRegistry struct {
	IsRegisteredOperatorFn func(operator ledger.Address) bool
}

func (m *MockOperatorRegistry) IsRegisteredOperator(operator ledger.Address) bool {
	return m.IsRegisteredOperatorFn(operator)
}

// MockTokenTransfer is a test double for TokenTransfer.
// All function fields must be set before the corresponding method is called.
type MockTokenTransfer struct {
	TransferFromFn func(ctx context.Context, from, to ledger.Address, amount *uint256.Int) error
	TransferFn     func(ctx context.Context, to ledger.Address, amount *uint256.Int) error
	ApproveFn      func(ctx context.Context, spender ledger.Address, amount *uint256.Int) error
	BalanceOfFn    func(ctx context.Context, holder ledger.Address) (*uint256.Int, error)
}

func (m *MockTokenTransfer) TransferFrom(ctx context.Context, from, to ledger.Address, amount *uint256.Int) error {
	return m.TransferFromFn(ctx, from, to, amount)
}
func (m *MockTokenTransfer) Transfer(ctx context.Context, to ledger.Address, amount *uint256.Int) error {
	return m.TransferFn(ctx, to, amount)
}
func (m *MockTokenTransfer) Approve(ctx context.Context, spender ledger.Address, amount *uint256.Int) error {
	return m.ApproveFn(ctx, spender, amount)
}
func (m *MockTokenTransfer) BalanceOf(ctx context.Context, holder ledger.Address) (*uint256.Int, error) {
	return m.BalanceOfFn(ctx, holder)
}

// MockStaking is a test double for Staking.
type MockStaking struct {
	StakeOnBehalfOfFn func(ctx context.Context, operator ledger.Address, amount *uint256.Int) error
}

func (m *MockStaking) StakeOnBehalfOf(ctx context.Context, operator ledger.Address, amount *uint256.Int) error {
	return m.StakeOnBehalfOfFn(ctx, operator, amount)
}

// MockDirectory is a test double for Directory.
type MockDirectory struct {
	GetAddressFn func(ctx context.Context, key [32]byte) (ledger.Address, error)
}

func (m *MockDirectory) GetAddress(ctx context.Context, key [32]byte) (ledger.Address, error) {
	return m.GetAddressFn(ctx, key)
}

// MockStore is a test double for Store.
type MockStore struct {
	CommitFn func(l *ledger.Ledger, events []Event) error
}

func (m *MockStore) Commit(l *ledger.Ledger, events []Event) error {
	return m.CommitFn(l, events)
}
