package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/stakevault/libstakevault-go/rewards"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the vault's assets, shares and yield",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(_ context.Context, s *session) error {
				snap, err := s.vault.Snapshot()
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "vault\t%s\n", s.vault.Address())
				fmt.Fprintf(w, "idle balance\t%s\n", snap.State.IdleBalance.Dec())
				fmt.Fprintf(w, "staked total\t%s\n", snap.State.StakedTotal.Dec())
				fmt.Fprintf(w, "total assets\t%s\n", snap.TotalAssets.Dec())
				fmt.Fprintf(w, "total shares\t%s\n", snap.TotalShares.Dec())
				fmt.Fprintf(w, "share holders\t%d\n", snap.Holders)
				fmt.Fprintf(w, "share price\t%s\n", formatFixed(&snap.SharePrice))
				fmt.Fprintf(w, "deposit cap\t%s\n", snap.State.Cap.Dec())
				fmt.Fprintf(w, "target APR\t%s bps\n", snap.State.TargetAPR.Dec())
				fmt.Fprintf(w, "APY\t%s\n", formatFixed(&snap.APY))
				return w.Flush()
			})
		},
	}
}

func (a *app) previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "preview <deposit|mint|withdraw|redeem> <amount>",
		Short:     "Preview an operation at the current share price",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"deposit", "mint", "withdraw", "redeem"},
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(_ context.Context, s *session) error {
				var (
					out  *uint256.Int
					unit string
				)
				switch args[0] {
				case "deposit":
					out, err = s.vault.PreviewDeposit(amount)
					unit = "shares minted"
				case "mint":
					out, err = s.vault.PreviewMint(amount)
					unit = "assets charged"
				case "withdraw":
					out, err = s.vault.PreviewWithdraw(amount)
					unit = "shares burned"
				case "redeem":
					out, err = s.vault.PreviewRedeem(amount)
					unit = "assets paid"
				default:
					return fmt.Errorf("unknown operation %q", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", out.Dec(), unit)
				return nil
			})
		},
	}
}

func (a *app) limitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits <account>",
		Short: "Show the largest deposit, mint, withdraw and redeem open to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := parseAccount("account", args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(_ context.Context, s *session) error {
				maxMint, err := s.vault.MaxMint(account)
				if err != nil {
					return err
				}
				maxWithdraw, err := s.vault.MaxWithdraw(account)
				if err != nil {
					return err
				}
				maxRedeem, err := s.vault.MaxRedeem(account)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "shares\t%s\n", s.vault.BalanceOf(account).Dec())
				fmt.Fprintf(w, "max deposit\t%s\n", s.vault.MaxDeposit(account).Dec())
				fmt.Fprintf(w, "max mint\t%s\n", maxMint.Dec())
				fmt.Fprintf(w, "max withdraw\t%s\n", maxWithdraw.Dec())
				fmt.Fprintf(w, "max redeem\t%s\n", maxRedeem.Dec())
				return w.Flush()
			})
		},
	}
}

func (a *app) previewRewardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview-rewards <stake>",
		Short: "Show the reward one accrual would book on a staked amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stake, err := parseAmount("stake", args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(_ context.Context, s *session) error {
				reward, err := s.vault.PreviewRewards(stake)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reward.Dec())
				return nil
			})
		},
	}
}

func (a *app) apyCmd() *cobra.Command {
	var (
		apr     uint64
		periods uint64
	)
	cmd := &cobra.Command{
		Use:   "apy",
		Short: "Compound an APR into an APY (defaults to the vault's target APR)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			compute := func(apr *uint256.Int) error {
				apy, err := rewards.CalculateAPYFromAPR(apr, periods)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatFixed(apy))
				return nil
			}
			if cmd.Flags().Changed("apr") {
				return compute(uint256.NewInt(apr))
			}
			return a.withSession(cmd, func(_ context.Context, s *session) error {
				st := s.vault.State()
				return compute(&st.TargetAPR)
			})
		},
	}
	cmd.Flags().Uint64Var(&apr, "apr", 0, "APR in basis points instead of the vault's")
	cmd.Flags().Uint64Var(&periods, "periods", rewards.PeriodsPerYear, "compounding periods per year")
	return cmd
}

func (a *app) eventsCmd() *cobra.Command {
	var (
		from  uint64
		limit int
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the audit log as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(_ context.Context, s *session) error {
				events, err := s.store.Events(from, limit)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				for i := range events {
					if err := enc.Encode(&events[i]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 0, "first sequence number")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events (0 for all)")
	return cmd
}
