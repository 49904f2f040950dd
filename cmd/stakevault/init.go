package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stakevault/libstakevault-go/config"
	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/storage"
)

func (a *app) initCmd() *cobra.Command {
	var (
		owner, vaultAddr, networkName, capStr string
		apr                                   uint64
		protocol, operators                   []string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.toml and create an empty vault in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ConfigPath(a.dataDir)
			cfg, err := config.LoadConfig(path)
			switch {
			case errors.Is(err, config.ErrConfigNotFound):
				cfg = config.DefaultConfig()
			case err != nil:
				return err
			}
			cfg.DataDir = a.dataDir

			f := cmd.Flags()
			if f.Changed("owner") {
				cfg.Owner = owner
			}
			if f.Changed("vault") {
				cfg.VaultAddress = vaultAddr
			}
			if f.Changed("network") {
				cfg.Network = networkName
			}
			if f.Changed("cap") {
				cfg.Cap = capStr
			}
			if f.Changed("apr") {
				cfg.TargetAPR = apr
			}
			if f.Changed("protocol") {
				cfg.Protocol = protocol
			}
			if f.Changed("operator") {
				cfg.Operators = operators
			}
			if a.rpcURL != "" {
				cfg.RPC.URL = a.rpcURL
			}

			if err := config.ValidateConfig(cfg); err != nil {
				return err
			}
			self, err := cfg.VaultAccount()
			if err != nil {
				return err
			}
			if _, err := cfg.OwnerAccount(); err != nil {
				return err
			}
			capAmount, err := cfg.CapAmount()
			if err != nil {
				return err
			}
			l, err := ledger.New(capAmount, cfg.TargetAPRAmount())
			if err != nil {
				return err
			}

			store, err := storage.Open(a.dataDir)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Init(l); err != nil {
				return err
			}
			if err := config.SaveConfig(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized vault %s in %s\n", self, a.dataDir)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&owner, "owner", "", "vault owner account")
	f.StringVar(&vaultAddr, "vault", "", "the vault's own token account")
	f.StringVar(&networkName, "network", "", "network name (mainnet, testnet, devnet)")
	f.StringVar(&capStr, "cap", "", "deposit cap in base units")
	f.Uint64Var(&apr, "apr", 0, "target APR in basis points")
	f.StringSliceVar(&protocol, "protocol", nil, "accounts holding the protocol role")
	f.StringSliceVar(&operators, "operator", nil, "registered node operators")
	return cmd
}
