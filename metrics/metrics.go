// Package metrics exports vault state and operation outcomes to Prometheus.
package metrics

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/vault"
)

const namespace = "stakevault"

// Collector implements vault.Observer on Prometheus gauges and counters.
// Amounts are exported as float64 and lose precision above 2^53 base units.
type Collector struct {
	idle        prometheus.Gauge
	staked      prometheus.Gauge
	totalAssets prometheus.Gauge
	totalShares prometheus.Gauge
	cap         prometheus.Gauge
	targetAPR   prometheus.Gauge
	sharePrice  prometheus.Gauge
	holders     prometheus.Gauge

	ops      *prometheus.CounterVec
	failures *prometheus.CounterVec
}

var _ vault.Observer = (*Collector)(nil)

// NewCollector creates the vault metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	c := &Collector{
		idle:        gauge("idle_balance", "Assets held by the vault and not staked."),
		staked:      gauge("staked_total", "Assets out at stake, including booked rewards."),
		totalAssets: gauge("total_assets", "Idle plus staked assets."),
		totalShares: gauge("total_shares", "Vault share supply."),
		cap:         gauge("deposit_cap", "Maximum total assets accepted by deposits."),
		targetAPR:   gauge("target_apr_bps", "Target APR in basis points."),
		sharePrice:  gauge("share_price", "Assets per 1e18 shares."),
		holders:     gauge("share_holders", "Accounts holding shares."),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operations_total", Help: "Vault operations attempted, by kind.",
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_failures_total", Help: "Vault operations that failed, by kind and reason.",
		}, []string{"op", "reason"}),
	}
	for _, col := range []prometheus.Collector{
		c.idle, c.staked, c.totalAssets, c.totalShares, c.cap, c.targetAPR, c.sharePrice, c.holders,
		c.ops, c.failures,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return c, nil
}

// ObserveOp counts one operation and, on failure, its reason.
func (c *Collector) ObserveOp(kind vault.EventKind, err error) {
	c.ops.WithLabelValues(string(kind)).Inc()
	if err != nil {
		c.failures.WithLabelValues(string(kind), Reason(err)).Inc()
	}
}

// ObserveSummary sets the state gauges.
func (c *Collector) ObserveSummary(s ledger.Summary) {
	c.idle.Set(float(&s.State.IdleBalance))
	c.staked.Set(float(&s.State.StakedTotal))
	c.totalAssets.Set(float(&s.TotalAssets))
	c.totalShares.Set(float(&s.TotalShares))
	c.cap.Set(float(&s.State.Cap))
	c.targetAPR.Set(float(&s.State.TargetAPR))
	c.sharePrice.Set(float(&s.SharePrice))
	c.holders.Set(float64(s.Holders))
}

func float(x *uint256.Int) float64 { return x.Float64() }

// reasons maps sentinel errors to failure label values, most specific first.
var reasons = []struct {
	err   error
	label string
}{
	{vault.ErrUnauthorized, "unauthorized"},
	{vault.ErrReentrantCall, "reentrant"},
	{vault.ErrUnknownOperator, "unknown_operator"},
	{vault.ErrDirectoryLookup, "directory"},
	{vault.ErrTransferFailed, "transfer"},
	{vault.ErrStakingFailed, "staking"},
	{vault.ErrPersist, "persist"},
	{ledger.ErrCapExceeded, "cap_exceeded"},
	{ledger.ErrExceedsStaked, "exceeds_staked"},
	{ledger.ErrInsufficientLiquidity, "insufficient_liquidity"},
	{ledger.ErrInsufficientShares, "insufficient_shares"},
	{ledger.ErrInsufficientAllowance, "insufficient_allowance"},
	{ledger.ErrArithmeticOverflow, "overflow"},
	{ledger.ErrArithmeticUnderflow, "underflow"},
	{ledger.ErrZeroAmount, "zero_amount"},
	{ledger.ErrZeroShares, "zero_shares"},
	{ledger.ErrZeroAddress, "zero_address"},
	{ledger.ErrAPRTooHigh, "apr_too_high"},
}

// Reason returns the failure label for err.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "other"
}
