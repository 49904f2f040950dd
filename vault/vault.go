// Package vault runs an ERC4626-style staking vault over a ledger.Ledger.
//
// A Vault owns one ledger and serializes every mutation. Each operation runs
// against a working copy: ledger effects are applied first, collaborators
// are called next, and the copy only replaces the committed ledger once every
// call succeeded and the store accepted it. Any failure discards the copy, so
// the vault is left exactly as it was.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/stakevault/libstakevault-go/directory"
	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/rewards"
)

// DefaultStakingContract is the directory name the staking contract is
// registered under.
const DefaultStakingContract = "NodeStaking"

// Vault is the long-lived owner of one ledger. It is safe for concurrent use.
type Vault struct {
	self   ledger.Address
	collab Collaborators

	store    Store
	observer Observer
	log      *zap.Logger
	now      func() time.Time

	stakingKey  [32]byte
	stakingName string

	mu      sync.Mutex
	current atomic.Pointer[ledger.Ledger]
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(v *Vault) { v.log = log }
}

// WithStore persists every committed operation.
func WithStore(s Store) Option {
	return func(v *Vault) { v.store = s }
}

// WithObserver reports operation outcomes, typically to metrics.
func WithObserver(o Observer) Option {
	return func(v *Vault) { v.observer = o }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

// WithStakingContract sets the directory name the staking contract is
// resolved under.
func WithStakingContract(name string) Option {
	return func(v *Vault) { v.stakingName = name }
}

// New returns a vault acting as account self over l.
func New(self ledger.Address, l *ledger.Ledger, c Collaborators, opts ...Option) (*Vault, error) {
	if self.IsZero() {
		return nil, fmt.Errorf("vault: own address: %w", ledger.ErrZeroAddress)
	}
	if l == nil {
		return nil, errors.New("vault: nil ledger")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	v := &Vault{
		self:        self,
		collab:      c,
		log:         zap.NewNop(),
		now:         time.Now,
		stakingName: DefaultStakingContract,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.stakingKey = directory.Key(v.stakingName)
	v.current.Store(l.Clone())
	v.log = v.log.With(zap.Stringer("vault", self))
	return v, nil
}

// Address returns the vault's own account.
func (v *Vault) Address() ledger.Address { return v.self }

type opKey struct{}

// withWriteLock runs fn against a copy of the committed ledger while holding
// the vault lock. The copy replaces the committed ledger only when fn and the
// store both succeed. fn receives a context marking the operation as in
// flight so collaborators calling back in get ErrReentrantCall.
func (v *Vault) withWriteLock(ctx context.Context, kind EventKind, caller ledger.Address,
	fn func(ctx context.Context, l *ledger.Ledger) ([]Event, error)) error {
	if inflight, ok := ctx.Value(opKey{}).(EventKind); ok {
		err := fmt.Errorf("%w: %s during %s", ErrReentrantCall, kind, inflight)
		v.finish(kind, caller, err)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := ctx.Err(); err != nil {
		v.finish(kind, caller, err)
		return err
	}

	working := v.current.Load().Clone()
	events, err := fn(context.WithValue(ctx, opKey{}, kind), working)
	if err != nil {
		v.finish(kind, caller, err)
		return err
	}

	now := v.now().UTC()
	for i := range events {
		events[i].Time = now
		events[i].Caller = caller
	}
	if v.store != nil {
		if err := v.store.Commit(working, events); err != nil {
			err = fmt.Errorf("%w: %w", ErrPersist, err)
			v.finish(kind, caller, err)
			return err
		}
	}
	v.current.Store(working)

	if v.observer != nil {
		if sum, err := working.Summary(); err == nil {
			v.observer.ObserveSummary(sum)
		}
	}
	v.finish(kind, caller, nil)
	for _, ev := range events {
		v.log.Info("vault operation", eventFields(ev)...)
	}
	return nil
}

// finish records the outcome of an operation. Failures that happen after
// ledger effects were applied (collaborator or store errors) log at Warn;
// rejected calls log at Debug.
func (v *Vault) finish(kind EventKind, caller ledger.Address, err error) {
	if v.observer != nil {
		v.observer.ObserveOp(kind, err)
	}
	if err == nil {
		return
	}
	fields := []zap.Field{zap.String("op", string(kind)), zap.Stringer("caller", caller), zap.Error(err)}
	if rolledBack(err) {
		v.log.Warn("vault operation rolled back", fields...)
		return
	}
	v.log.Debug("vault operation rejected", fields...)
}

func rolledBack(err error) bool {
	return errors.Is(err, ErrTransferFailed) ||
		errors.Is(err, ErrStakingFailed) ||
		errors.Is(err, ErrPersist)
}

func eventFields(ev Event) []zap.Field {
	fields := []zap.Field{zap.String("op", string(ev.Kind)), zap.Stringer("caller", ev.Caller)}
	if !ev.Receiver.IsZero() {
		fields = append(fields, zap.Stringer("receiver", ev.Receiver))
	}
	if !ev.Owner.IsZero() {
		fields = append(fields, zap.Stringer("owner", ev.Owner))
	}
	if !ev.Operator.IsZero() {
		fields = append(fields, zap.Stringer("operator", ev.Operator))
	}
	if ev.Amount != nil {
		fields = append(fields, zap.Stringer("amount", ev.Amount))
	}
	if ev.Shares != nil {
		fields = append(fields, zap.Stringer("shares", ev.Shares))
	}
	if ev.Reward != nil {
		fields = append(fields, zap.Stringer("reward", ev.Reward))
	}
	return fields
}

// Snapshot is a point-in-time status view of the vault.
type Snapshot struct {
	ledger.Summary
	// APY is the target APR compounded over rewards.PeriodsPerYear, scaled by 1e18.
	APY uint256.Int
}

// Snapshot returns the committed state with derived figures.
func (v *Vault) Snapshot() (Snapshot, error) {
	l := v.current.Load()
	sum, err := l.Summary()
	if err != nil {
		return Snapshot{}, err
	}
	apy, err := rewards.CalculateAPYFromAPR(&sum.State.TargetAPR, rewards.PeriodsPerYear)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Summary: sum, APY: *apy}, nil
}

// Ledger returns a copy of the committed ledger.
func (v *Vault) Ledger() *ledger.Ledger { return v.current.Load().Clone() }

// State returns the committed asset state.
func (v *Vault) State() ledger.VaultState { return v.current.Load().State() }

// TotalAssets returns idle plus staked assets.
func (v *Vault) TotalAssets() *uint256.Int { return v.current.Load().TotalAssets() }

// TotalShares returns the share supply.
func (v *Vault) TotalShares() *uint256.Int { return v.current.Load().TotalShares() }

// BalanceOf returns holder's share balance.
func (v *Vault) BalanceOf(holder ledger.Address) *uint256.Int {
	return v.current.Load().BalanceOf(holder)
}

// Allowance returns spender's allowance over owner's shares.
func (v *Vault) Allowance(owner, spender ledger.Address) *uint256.Int {
	return v.current.Load().Allowance(owner, spender)
}

func (v *Vault) ConvertToShares(assets *uint256.Int) (*uint256.Int, error) {
	return v.current.Load().ConvertToShares(assets)
}

func (v *Vault) ConvertToAssets(shares *uint256.Int) (*uint256.Int, error) {
	return v.current.Load().ConvertToAssets(shares)
}

func (v *Vault) PreviewDeposit(assets *uint256.Int) (*uint256.Int, error) {
	return v.current.Load().PreviewDeposit(assets)
}

func (v *Vault) PreviewMint(shares *uint256.Int) (*uint256.Int, error) {
	return v.current.Load().PreviewMint(shares)
}

func (v *Vault) PreviewWithdraw(assets *uint256.Int) (*uint256.Int, error) {
	return v.current.Load().PreviewWithdraw(assets)
}

func (v *Vault) PreviewRedeem(shares *uint256.Int) (*uint256.Int, error) {
	return v.current.Load().PreviewRedeem(shares)
}

func (v *Vault) MaxDeposit(receiver ledger.Address) *uint256.Int {
	return v.current.Load().MaxDeposit(receiver)
}

func (v *Vault) MaxMint(receiver ledger.Address) (*uint256.Int, error) {
	return v.current.Load().MaxMint(receiver)
}

func (v *Vault) MaxWithdraw(owner ledger.Address) (*uint256.Int, error) {
	return v.current.Load().MaxWithdraw(owner)
}

func (v *Vault) MaxRedeem(owner ledger.Address) (*uint256.Int, error) {
	return v.current.Load().MaxRedeem(owner)
}

// PreviewRewards returns the reward one accrual would book for stake.
func (v *Vault) PreviewRewards(stake *uint256.Int) (*uint256.Int, error) {
	return v.current.Load().PreviewRewards(stake)
}
