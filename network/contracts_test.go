package network

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakevault/libstakevault-go/authz"
	"github.com/stakevault/libstakevault-go/directory"
	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/staking"
	"github.com/stakevault/libstakevault-go/token"
	"github.com/stakevault/libstakevault-go/vault"
)

var (
	vaultAddr   = ledger.MustParseAddress("0x7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a")
	stakingAddr = ledger.MustParseAddress("0x5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a")
	ownerAddr   = ledger.MustParseAddress("0x0101010101010101010101010101010101010101")
	operator    = ledger.MustParseAddress("0x0303030303030303030303030303030303030303")
	alice       = ledger.MustParseAddress("0xa1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1")
)

// fakeNode serves the contract methods from in-memory token, staking and
// directory implementations.
type fakeNode struct {
	tok     *token.Ledger
	staking *staking.NodeStaking
	dir     *directory.Memory

	mu      sync.Mutex
	methods []string
}

func newFakeNode(t *testing.T) (*fakeNode, *RPCClient) {
	t.Helper()
	tok := token.NewLedger()
	n := &fakeNode{
		tok:     tok,
		staking: staking.New(stakingAddr, tok.Account(stakingAddr)),
		dir:     directory.NewMemory(),
	}
	n.dir.Register(vault.DefaultStakingContract, stakingAddr)
	server := httptest.NewServer(n)
	t.Cleanup(server.Close)
	return n, NewRPCClient(RPCConfig{URL: server.URL})
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int64        `json:"id"`
		Method string       `json:"method"`
		Params []CallParams `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Params) != 1 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	n.mu.Lock()
	n.methods = append(n.methods, req.Method)
	n.mu.Unlock()

	result, err := n.dispatch(r.Context(), req.Method, req.Params[0])
	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	if err != nil {
		resp.Error = &rpcError{Code: -32000, Message: err.Error()}
	} else {
		resp.Result, _ = json.Marshal(result)
	}
	json.NewEncoder(w).Encode(resp)
}

func (n *fakeNode) dispatch(ctx context.Context, method string, p CallParams) (interface{}, error) {
	addr := func(s string) ledger.Address { return ledger.MustParseAddress(s) }
	var amount *uint256.Int
	if p.Amount != "" {
		var err error
		if amount, err = uint256.FromDecimal(p.Amount); err != nil {
			return nil, err
		}
	}
	switch method {
	case MethodTokenTransfer:
		return true, n.tok.Account(addr(p.Sender)).Transfer(ctx, addr(p.To), amount)
	case MethodTokenTransferFrom:
		return true, n.tok.Account(addr(p.Sender)).TransferFrom(ctx, addr(p.From), addr(p.To), amount)
	case MethodTokenApprove:
		return true, n.tok.Account(addr(p.Sender)).Approve(ctx, addr(p.Spender), amount)
	case MethodTokenBalanceOf:
		return n.tok.BalanceOf(addr(p.Holder)).Dec(), nil
	case MethodStakeOnBehalfOf:
		if addr(p.Contract) != n.staking.Address() {
			return nil, errors.New("no contract at address")
		}
		return true, n.staking.Caller(addr(p.Sender)).StakeOnBehalfOf(ctx, addr(p.Operator), amount)
	case MethodDirectoryLookup:
		raw, err := hex.DecodeString(strings.TrimPrefix(p.Key, "0x"))
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("bad key %q", p.Key)
		}
		var key [32]byte
		copy(key[:], raw)
		a, err := n.dir.GetAddress(ctx, key)
		if errors.Is(err, directory.ErrNotFound) {
			return "", nil
		}
		return a.Hex(), err
	}
	return nil, fmt.Errorf("method %s not found", method)
}

func (n *fakeNode) calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.methods...)
}

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

func TestTokenClientTransferAndBalance(t *testing.T) {
	node, rpc := newFakeNode(t)
	require.NoError(t, node.tok.Mint(vaultAddr, ether(5)))
	ctx := context.Background()

	c := NewTokenClient(rpc, vaultAddr)
	require.NoError(t, c.Transfer(ctx, alice, ether(2)))

	bal, err := c.BalanceOf(ctx, alice)
	require.NoError(t, err)
	assert.True(t, bal.Eq(ether(2)))
	bal, err = c.BalanceOf(ctx, vaultAddr)
	require.NoError(t, err)
	assert.True(t, bal.Eq(ether(3)))
}

func TestTokenClientTransferFromSpendsAllowance(t *testing.T) {
	node, rpc := newFakeNode(t)
	require.NoError(t, node.tok.Mint(alice, ether(5)))
	ctx := context.Background()

	c := NewTokenClient(rpc, vaultAddr)
	err := c.TransferFrom(ctx, alice, vaultAddr, ether(1))
	require.ErrorIs(t, err, ErrRPC)
	assert.Contains(t, err.Error(), "insufficient allowance")

	require.NoError(t, NewTokenClient(rpc, alice).Approve(ctx, vaultAddr, ether(1)))
	require.NoError(t, c.TransferFrom(ctx, alice, vaultAddr, ether(1)))
	assert.True(t, node.tok.BalanceOf(vaultAddr).Eq(ether(1)))
	assert.True(t, node.tok.Allowance(alice, vaultAddr).IsZero())
}

func TestStakingClientStakeOnBehalfOf(t *testing.T) {
	node, rpc := newFakeNode(t)
	require.NoError(t, node.tok.Mint(vaultAddr, ether(10)))
	ctx := context.Background()

	require.NoError(t, NewTokenClient(rpc, vaultAddr).Approve(ctx, stakingAddr, ether(4)))
	s, err := StakingBinder(rpc, vaultAddr)(stakingAddr)
	require.NoError(t, err)
	require.NoError(t, s.StakeOnBehalfOf(ctx, operator, ether(4)))

	assert.True(t, node.staking.StakeOf(operator).Eq(ether(4)))
	assert.True(t, node.tok.BalanceOf(vaultAddr).Eq(ether(6)))
}

func TestStakingClientUnknownContract(t *testing.T) {
	_, rpc := newFakeNode(t)
	s := NewStakingClient(rpc, alice, vaultAddr)
	err := s.StakeOnBehalfOf(context.Background(), operator, ether(1))
	require.ErrorIs(t, err, ErrRPC)
	assert.Contains(t, err.Error(), MethodStakeOnBehalfOf)
}

func TestStakingBinderRejectsZeroAddress(t *testing.T) {
	_, err := StakingBinder(&MockCaller{}, vaultAddr)(ledger.ZeroAddress)
	assert.ErrorIs(t, err, ledger.ErrZeroAddress)
}

func TestDirectoryClientGetAddress(t *testing.T) {
	_, rpc := newFakeNode(t)
	c := NewDirectoryClient(rpc)

	got, err := c.GetAddress(context.Background(), directory.Key(vault.DefaultStakingContract))
	require.NoError(t, err)
	assert.Equal(t, stakingAddr, got)

	got, err = c.GetAddress(context.Background(), directory.Key("Missing"))
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestDirectoryClientInvalidAddress(t *testing.T) {
	rpc := &MockCaller{CallFn: func(_ context.Context, method string, params []interface{}, result interface{}) error {
		assert.Equal(t, MethodDirectoryLookup, method)
		p := params[0].(CallParams)
		assert.Equal(t, "0x"+directory.KeyHex("Token"), p.Key)
		*result.(*string) = "0x1234"
		return nil
	}}
	_, err := NewDirectoryClient(rpc).GetAddress(context.Background(), directory.Key("Token"))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestInvokeRejected(t *testing.T) {
	rpc := &MockCaller{CallFn: func(_ context.Context, _ string, _ []interface{}, result interface{}) error {
		*result.(*bool) = false
		return nil
	}}
	err := NewTokenClient(rpc, vaultAddr).Approve(context.Background(), alice, ether(1))
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), MethodTokenApprove)
}

func TestTokenClientBalanceInvalid(t *testing.T) {
	rpc := &MockCaller{CallFn: func(_ context.Context, _ string, _ []interface{}, result interface{}) error {
		*result.(*string) = "not-a-number"
		return nil
	}}
	_, err := NewTokenClient(rpc, vaultAddr).BalanceOf(context.Background(), alice)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestTokenClientEncodesDecimalAmounts(t *testing.T) {
	var got CallParams
	rpc := &MockCaller{CallFn: func(_ context.Context, method string, params []interface{}, result interface{}) error {
		assert.Equal(t, MethodTokenTransferFrom, method)
		got = params[0].(CallParams)
		*result.(*bool) = true
		return nil
	}}
	require.NoError(t, NewTokenClient(rpc, vaultAddr).TransferFrom(context.Background(), alice, vaultAddr, ether(33000)))
	assert.Equal(t, CallParams{
		Sender: vaultAddr.Hex(),
		From:   alice.Hex(),
		To:     vaultAddr.Hex(),
		Amount: "33000000000000000000000",
	}, got)
}

func TestVaultOverRPC(t *testing.T) {
	node, rpc := newFakeNode(t)
	ctx := context.Background()
	require.NoError(t, node.tok.Mint(alice, ether(100)))
	require.NoError(t, node.tok.Account(alice).Approve(ctx, vaultAddr, ether(100)))

	acl := authz.NewStatic(ownerAddr)
	acl.RegisterOperators(operator)
	l, err := ledger.New(ether(33000), uint256.NewInt(1836))
	require.NoError(t, err)
	v, err := vault.New(vaultAddr, l, vault.Collaborators{
		Auth:      acl,
		Operators: acl,
		Token:     NewTokenClient(rpc, vaultAddr),
		Directory: NewDirectoryClient(rpc),
		Staking:   StakingBinder(rpc, vaultAddr),
	})
	require.NoError(t, err)

	_, err = v.Deposit(ctx, alice, ether(100), alice)
	require.NoError(t, err)
	require.NoError(t, v.StakeOnNode(ctx, ownerAddr, ether(60), operator))

	assert.True(t, node.staking.StakeOf(operator).Eq(ether(60)))
	assert.True(t, node.tok.BalanceOf(vaultAddr).Eq(ether(40)))
	assert.Equal(t, []string{
		MethodTokenTransferFrom,
		MethodDirectoryLookup,
		MethodTokenApprove,
		MethodStakeOnBehalfOf,
	}, node.calls())

	// Only 40 is idle: the ledger rejects the stake after the directory
	// lookup, before any token moves.
	err = v.StakeOnNode(ctx, ownerAddr, ether(50), operator)
	require.ErrorIs(t, err, ledger.ErrInsufficientLiquidity)
	st := v.State()
	assert.True(t, st.IdleBalance.Eq(ether(40)))
	calls := node.calls()
	require.Len(t, calls, 5)
	assert.Equal(t, MethodDirectoryLookup, calls[4])
}
