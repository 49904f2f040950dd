package network

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/vault"
)

// JSON-RPC methods exposed by the node for the vault's contracts.
const (
	MethodTokenTransfer     = "token_transfer"
	MethodTokenTransferFrom = "token_transferFrom"
	MethodTokenApprove      = "token_approve"
	MethodTokenBalanceOf    = "token_balanceOf"
	MethodStakeOnBehalfOf   = "staking_stakeOnBehalfOf"
	MethodDirectoryLookup   = "directory_getAddress"
)

// CallParams is the single positional parameter of every contract method.
// Addresses are 0x-prefixed hex and amounts are base-10 strings; unused
// fields are omitted.
type CallParams struct {
	Sender   string `json:"sender,omitempty"`
	Contract string `json:"contract,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Spender  string `json:"spender,omitempty"`
	Holder   string `json:"holder,omitempty"`
	Operator string `json:"operator,omitempty"`
	Key      string `json:"key,omitempty"`
	Amount   string `json:"amount,omitempty"`
}

// invoke calls a state-changing method that answers with a boolean.
func invoke(ctx context.Context, rpc Caller, method string, p CallParams) error {
	var ok bool
	if err := rpc.Call(ctx, method, []interface{}{p}, &ok); err != nil {
		return fmt.Errorf("network: %s: %w", method, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRejected, method)
	}
	return nil
}

// TokenClient drives the staking token as account sender. It satisfies
// vault.TokenTransfer.
type TokenClient struct {
	rpc    Caller
	sender ledger.Address
}

var _ vault.TokenTransfer = (*TokenClient)(nil)

// NewTokenClient returns a token client sending as sender.
func NewTokenClient(rpc Caller, sender ledger.Address) *TokenClient {
	return &TokenClient{rpc: rpc, sender: sender}
}

func (c *TokenClient) Transfer(ctx context.Context, to ledger.Address, amount *uint256.Int) error {
	return invoke(ctx, c.rpc, MethodTokenTransfer, CallParams{
		Sender: c.sender.Hex(), To: to.Hex(), Amount: amount.Dec(),
	})
}

func (c *TokenClient) TransferFrom(ctx context.Context, from, to ledger.Address, amount *uint256.Int) error {
	return invoke(ctx, c.rpc, MethodTokenTransferFrom, CallParams{
		Sender: c.sender.Hex(), From: from.Hex(), To: to.Hex(), Amount: amount.Dec(),
	})
}

func (c *TokenClient) Approve(ctx context.Context, spender ledger.Address, amount *uint256.Int) error {
	return invoke(ctx, c.rpc, MethodTokenApprove, CallParams{
		Sender: c.sender.Hex(), Spender: spender.Hex(), Amount: amount.Dec(),
	})
}

// BalanceOf returns holder's token balance.
func (c *TokenClient) BalanceOf(ctx context.Context, holder ledger.Address) (*uint256.Int, error) {
	var dec string
	if err := c.rpc.Call(ctx, MethodTokenBalanceOf, []interface{}{CallParams{Holder: holder.Hex()}}, &dec); err != nil {
		return nil, fmt.Errorf("network: %s: %w", MethodTokenBalanceOf, err)
	}
	bal, err := uint256.FromDecimal(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: balance %q: %w", ErrInvalidResponse, dec, err)
	}
	return bal, nil
}

// StakingClient calls the node staking contract at a fixed address as
// account sender. It satisfies vault.Staking.
type StakingClient struct {
	rpc      Caller
	contract ledger.Address
	sender   ledger.Address
}

var _ vault.Staking = (*StakingClient)(nil)

// NewStakingClient returns a client for the staking contract at contract.
func NewStakingClient(rpc Caller, contract, sender ledger.Address) *StakingClient {
	return &StakingClient{rpc: rpc, contract: contract, sender: sender}
}

// StakeOnBehalfOf stakes amount for operator. The contract pulls the tokens
// from sender, which must have approved it.
func (c *StakingClient) StakeOnBehalfOf(ctx context.Context, operator ledger.Address, amount *uint256.Int) error {
	return invoke(ctx, c.rpc, MethodStakeOnBehalfOf, CallParams{
		Sender: c.sender.Hex(), Contract: c.contract.Hex(), Operator: operator.Hex(), Amount: amount.Dec(),
	})
}

// StakingBinder binds StakingClients for whichever contract address the
// directory resolves.
func StakingBinder(rpc Caller, sender ledger.Address) vault.StakingBinder {
	return func(addr ledger.Address) (vault.Staking, error) {
		if addr.IsZero() {
			return nil, fmt.Errorf("network: staking contract: %w", ledger.ErrZeroAddress)
		}
		return NewStakingClient(rpc, addr, sender), nil
	}
}

// DirectoryClient reads the on-chain storage directory. A key with no entry
// resolves to the zero address.
type DirectoryClient struct {
	rpc Caller
}

var _ vault.Directory = (*DirectoryClient)(nil)

func NewDirectoryClient(rpc Caller) *DirectoryClient {
	return &DirectoryClient{rpc: rpc}
}

func (c *DirectoryClient) GetAddress(ctx context.Context, key [32]byte) (ledger.Address, error) {
	var s string
	p := CallParams{Key: "0x" + hex.EncodeToString(key[:])}
	if err := c.rpc.Call(ctx, MethodDirectoryLookup, []interface{}{p}, &s); err != nil {
		return ledger.ZeroAddress, fmt.Errorf("network: %s: %w", MethodDirectoryLookup, err)
	}
	if s == "" {
		return ledger.ZeroAddress, nil
	}
	addr, err := ledger.ParseAddress(s)
	if err != nil {
		return ledger.ZeroAddress, fmt.Errorf("%w: address %q: %w", ErrInvalidResponse, s, err)
	}
	return addr, nil
}
