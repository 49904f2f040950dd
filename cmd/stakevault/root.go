package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stakevault/libstakevault-go/authz"
	"github.com/stakevault/libstakevault-go/config"
	"github.com/stakevault/libstakevault-go/directory"
	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/network"
	"github.com/stakevault/libstakevault-go/storage"
	"github.com/stakevault/libstakevault-go/vault"
)

// app carries the global flags shared by every command.
type app struct {
	dataDir string
	caller  string
	rpcURL  string

	getenv func(string) string
}

func newRootCmd() *cobra.Command {
	a := &app{getenv: os.Getenv}
	root := &cobra.Command{
		Use:           "stakevault",
		Short:         "Operate an ERC4626 staking vault",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.dataDir, "datadir", config.DefaultDataDir(), "directory holding config.toml and the vault database")
	pf.StringVar(&a.caller, "caller", "", "account the operation is performed as")
	pf.StringVar(&a.rpcURL, "rpc-url", "", "JSON-RPC endpoint of the chain node (overrides config and "+network.EnvRPCURL+")")

	root.AddCommand(
		a.initCmd(),
		a.statusCmd(),
		a.depositCmd(),
		a.mintCmd(),
		a.withdrawCmd(),
		a.redeemCmd(),
		a.transferCmd(),
		a.approveCmd(),
		a.stakeCmd(),
		a.accrueCmd(),
		a.stakeAndAccrueCmd(),
		a.reconcileCmd(),
		a.setCapCmd(),
		a.setAPRCmd(),
		a.previewCmd(),
		a.limitsCmd(),
		a.previewRewardsCmd(),
		a.apyCmd(),
		a.eventsCmd(),
		a.serveCmd(),
	)
	return root
}

// session is an open vault together with the resources backing it.
type session struct {
	cfg   config.Config
	vault *vault.Vault
	store *storage.BoltStore
	log   *zap.Logger
}

func (s *session) Close() error {
	_ = s.log.Sync()
	return s.store.Close()
}

// loadConfig reads the data directory's config.toml.
func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(config.ConfigPath(a.dataDir))
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return cfg, fmt.Errorf("%w (run \"stakevault init\" first)", err)
		}
		return cfg, err
	}
	cfg.DataDir = a.dataDir
	if err := config.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// open loads the configuration, locks the data directory and builds the vault.
func (a *app) open(opts ...vault.Option) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	self, err := cfg.VaultAccount()
	if err != nil {
		return nil, err
	}
	collab, err := a.collaborators(cfg, self)
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	l, err := store.LoadLedger()
	if err != nil {
		store.Close()
		return nil, err
	}

	base := []vault.Option{vault.WithLogger(log), vault.WithStore(store)}
	if cfg.StakingContract != "" {
		base = append(base, vault.WithStakingContract(cfg.StakingContract))
	}
	v, err := vault.New(self, l, collab, append(base, opts...)...)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &session{cfg: cfg, vault: v, store: store, log: log}, nil
}

// collaborators wires the access list from the config and the token,
// staking and directory clients to the node.
func (a *app) collaborators(cfg config.Config, self ledger.Address) (vault.Collaborators, error) {
	flags := cfg.RPC
	if a.rpcURL != "" {
		flags.URL = a.rpcURL
	}
	env := map[string]string{}
	for _, k := range []string{network.EnvRPCURL, network.EnvRPCUser, network.EnvRPCPass} {
		env[k] = a.getenv(k)
	}
	rpcCfg, err := network.ResolveConfig(&flags, env, cfg.Network)
	if err != nil {
		return vault.Collaborators{}, err
	}
	rpc := network.NewRPCClient(*rpcCfg)

	owner, err := cfg.OwnerAccount()
	if err != nil {
		return vault.Collaborators{}, err
	}
	protocol, err := cfg.ProtocolAccounts()
	if err != nil {
		return vault.Collaborators{}, err
	}
	operators, err := cfg.OperatorAccounts()
	if err != nil {
		return vault.Collaborators{}, err
	}
	acl := authz.NewStatic(owner)
	acl.Grant(vault.RoleProtocol, protocol...)
	acl.RegisterOperators(operators...)

	dir, err := newDirectory(cfg, rpc)
	if err != nil {
		return vault.Collaborators{}, err
	}
	return vault.Collaborators{
		Auth:      acl,
		Operators: acl,
		Token:     network.NewTokenClient(rpc, self),
		Directory: dir,
		Staking:   network.StakingBinder(rpc, self),
	}, nil
}

// newDirectory resolves from DNS when a zone is configured. Otherwise
// static entries are consulted first and the node's directory after them.
func newDirectory(cfg config.Config, rpc network.Caller) (vault.Directory, error) {
	if cfg.Directory.Zone != "" {
		return directory.NewDNS(cfg.Directory.Zone, cfg.Directory.Upstream, cfg.Directory.RequireDNSSEC), nil
	}
	entries, err := cfg.DirectoryEntries()
	if err != nil {
		return nil, err
	}
	static := directory.NewMemory()
	for name, addr := range entries {
		static.Register(name, addr)
	}
	return directory.Chain{static, network.NewDirectoryClient(rpc)}, nil
}

// withSession opens the vault for the duration of fn.
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error, opts ...vault.Option) error {
	s, err := a.open(opts...)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(cmd.Context(), s)
}

// withCaller is withSession for operations performed as --caller.
func (a *app) withCaller(cmd *cobra.Command, fn func(ctx context.Context, s *session, caller ledger.Address) error) error {
	if a.caller == "" {
		return errors.New("--caller is required")
	}
	caller, err := ledger.ParseAddress(a.caller)
	if err != nil {
		return fmt.Errorf("--caller: %w", err)
	}
	return a.withSession(cmd, func(ctx context.Context, s *session) error {
		return fn(ctx, s, caller)
	})
}

func parseAmount(name, s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}

func parseAccount(name, s string) (ledger.Address, error) {
	a, err := ledger.ParseAddress(s)
	if err != nil {
		return ledger.ZeroAddress, fmt.Errorf("invalid %s: %w", name, err)
	}
	return a, nil
}

// accountOr parses s, or returns def when s is empty.
func accountOr(name, s string, def ledger.Address) (ledger.Address, error) {
	if s == "" {
		return def, nil
	}
	return parseAccount(name, s)
}

// formatFixed renders a 1e18 fixed-point value as a decimal fraction.
func formatFixed(x *uint256.Int) string {
	const decimals = 18
	s := x.Dec()
	for len(s) <= decimals {
		s = "0" + s
	}
	whole, frac := s[:len(s)-decimals], s[len(s)-decimals:]
	for len(frac) > 0 && frac[len(frac)-1] == '0' {
		frac = frac[:len(frac)-1]
	}
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
