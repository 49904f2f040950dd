package main

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/stakevault/libstakevault-go/ledger"
)

func (a *app) depositCmd() *cobra.Command {
	var receiver string
	cmd := &cobra.Command{
		Use:   "deposit <assets>",
		Short: "Deposit assets from the caller and mint shares to the receiver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := parseAmount("assets", args[0])
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				to, err := accountOr("receiver", receiver, caller)
				if err != nil {
					return err
				}
				shares, err := s.vault.Deposit(ctx, caller, assets, to)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "minted %s shares to %s\n", shares.Dec(), to)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&receiver, "receiver", "", "share recipient (default: caller)")
	return cmd
}

func (a *app) mintCmd() *cobra.Command {
	var receiver string
	cmd := &cobra.Command{
		Use:   "mint <shares>",
		Short: "Mint exactly shares to the receiver, paying the rounded-up asset cost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := parseAmount("shares", args[0])
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				to, err := accountOr("receiver", receiver, caller)
				if err != nil {
					return err
				}
				assets, err := s.vault.Mint(ctx, caller, shares, to)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "paid %s assets for %s shares\n", assets.Dec(), shares.Dec())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&receiver, "receiver", "", "share recipient (default: caller)")
	return cmd
}

func (a *app) withdrawCmd() *cobra.Command {
	var receiver, owner string
	cmd := &cobra.Command{
		Use:   "withdraw <assets>",
		Short: "Burn the owner's shares worth assets and send the assets to the receiver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := parseAmount("assets", args[0])
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				to, from, err := receiverOwner(receiver, owner, caller)
				if err != nil {
					return err
				}
				shares, err := s.vault.Withdraw(ctx, caller, assets, to, from)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "burned %s shares of %s\n", shares.Dec(), from)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&receiver, "receiver", "", "asset recipient (default: caller)")
	cmd.Flags().StringVar(&owner, "owner", "", "share owner (default: caller)")
	return cmd
}

func (a *app) redeemCmd() *cobra.Command {
	var receiver, owner string
	cmd := &cobra.Command{
		Use:   "redeem <shares>",
		Short: "Burn the owner's shares and send their value to the receiver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := parseAmount("shares", args[0])
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				to, from, err := receiverOwner(receiver, owner, caller)
				if err != nil {
					return err
				}
				assets, err := s.vault.Redeem(ctx, caller, shares, to, from)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sent %s assets to %s\n", assets.Dec(), to)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&receiver, "receiver", "", "asset recipient (default: caller)")
	cmd.Flags().StringVar(&owner, "owner", "", "share owner (default: caller)")
	return cmd
}

func receiverOwner(receiver, owner string, caller ledger.Address) (ledger.Address, ledger.Address, error) {
	to, err := accountOr("receiver", receiver, caller)
	if err != nil {
		return to, to, err
	}
	from, err := accountOr("owner", owner, caller)
	return to, from, err
}

func (a *app) transferCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "transfer <to> <shares>",
		Short: "Move vault shares, spending the caller's allowance when --owner is set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := parseAccount("recipient", args[0])
			if err != nil {
				return err
			}
			shares, err := parseAmount("shares", args[1])
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				if owner == "" {
					return s.vault.Transfer(ctx, caller, to, shares)
				}
				from, err := parseAccount("owner", owner)
				if err != nil {
					return err
				}
				return s.vault.TransferFrom(ctx, caller, from, to, shares)
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "share owner when transferring on someone's behalf")
	return cmd
}

func (a *app) approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <spender> <shares>",
		Short: "Set the spender's allowance over the caller's shares",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spender, err := parseAccount("spender", args[0])
			if err != nil {
				return err
			}
			shares, err := parseAmount("shares", args[1])
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				return s.vault.Approve(ctx, caller, spender, shares)
			})
		},
	}
}

func (a *app) stakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stake <amount> <operator>",
		Short: "Stake idle assets on a registered node operator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, operator, err := stakeArgs(args)
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				if err := s.vault.StakeOnNode(ctx, caller, amount, operator); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "staked %s on %s\n", amount.Dec(), operator)
				return nil
			})
		},
	}
}

func (a *app) accrueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accrue",
		Short: "Book one period of rewards on the staked total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				reward, err := s.vault.AccrueRewards(ctx, caller)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "accrued %s\n", reward.Dec())
				return nil
			})
		},
	}
}

func (a *app) stakeAndAccrueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stake-and-accrue <amount> <operator>",
		Short: "Stake on an operator and book rewards in one operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, operator, err := stakeArgs(args)
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				reward, err := s.vault.StakeAndAccrue(ctx, caller, amount, operator)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "staked %s on %s, accrued %s\n", amount.Dec(), operator, reward.Dec())
				return nil
			})
		},
	}
}

func stakeArgs(args []string) (amount *uint256.Int, operator ledger.Address, err error) {
	if amount, err = parseAmount("amount", args[0]); err != nil {
		return nil, operator, err
	}
	operator, err = parseAccount("operator", args[1])
	return amount, operator, err
}

func (a *app) reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <amount>",
		Short: "Return assets from staking to the idle balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("amount", args[0])
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				return s.vault.DepositFromStaking(ctx, caller, amount)
			})
		},
	}
}

func (a *app) setCapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-cap <cap>",
		Short: "Replace the deposit cap (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newCap, err := parseAmount("cap", args[0])
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				return s.vault.SetCap(ctx, caller, newCap)
			})
		},
	}
}

func (a *app) setAPRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-apr <bps>",
		Short: "Replace the target APR in basis points (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apr, err := parseAmount("APR", args[0])
			if err != nil {
				return err
			}
			return a.withCaller(cmd, func(ctx context.Context, s *session, caller ledger.Address) error {
				return s.vault.SetTargetAPR(ctx, caller, apr)
			})
		},
	}
}
