// Package config loads and validates the stakevault node configuration.
//
// The configuration lives in a TOML file inside the data directory. Values
// missing from the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/network"
	"github.com/stakevault/libstakevault-go/rewards"
)

// FileName is the configuration file name inside the data directory.
const FileName = "config.toml"

const header = "# StakeVault configuration\n\n"

// DefaultCap is the deposit cap of a new vault: 33000 tokens of 18 decimals.
const DefaultCap = "33000000000000000000000"

// DirectoryConfig selects where contract addresses are resolved. With a
// Zone set, lookups go to DNS; otherwise Entries are served from memory and
// names missing there fall through to the node.
type DirectoryConfig struct {
	Zone          string            `toml:"zone,omitempty"`
	Upstream      string            `toml:"upstream,omitempty"`
	RequireDNSSEC bool              `toml:"require_dnssec,omitempty"`
	Entries       map[string]string `toml:"entries,omitempty"`
}

// Config is the on-disk node configuration.
type Config struct {
	DataDir     string `toml:"datadir"`
	Network     string `toml:"network"`
	LogLevel    string `toml:"loglevel"`
	LogFile     string `toml:"logfile,omitempty"`
	MetricsAddr string `toml:"metrics_addr,omitempty"`

	VaultAddress    string   `toml:"vault_address"`
	Cap             string   `toml:"cap"`
	TargetAPR       uint64   `toml:"target_apr"`
	StakingContract string   `toml:"staking_contract,omitempty"`
	Owner           string   `toml:"owner"`
	Protocol        []string `toml:"protocol,omitempty"`
	Operators       []string `toml:"operators,omitempty"`

	RPC       network.RPCConfig `toml:"rpc"`
	Directory DirectoryConfig   `toml:"directory"`
}

// DefaultDataDir returns ~/.stakevault, or .stakevault in the working
// directory when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stakevault"
	}
	return filepath.Join(home, ".stakevault")
}

// DefaultConfig returns the configuration a fresh node starts from.
func DefaultConfig() Config {
	return Config{
		DataDir:   DefaultDataDir(),
		Network:   "devnet",
		LogLevel:  "info",
		Cap:       DefaultCap,
		TargetAPR: rewards.DefaultTargetAPR,
	}
}

// ConfigPath returns the configuration file path for dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// LoadConfig reads path over DefaultConfig. Unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfigFile, path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories. The file is
// readable by the owner only since it may carry RPC credentials.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	data = append([]byte(header), data...)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// CapAmount returns the parsed deposit cap.
func (c Config) CapAmount() (*uint256.Int, error) {
	v, err := uint256.FromDecimal(c.Cap)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidCap, c.Cap, err)
	}
	return v, nil
}

// TargetAPRAmount returns the target APR as a uint256.
func (c Config) TargetAPRAmount() *uint256.Int {
	return uint256.NewInt(c.TargetAPR)
}

func (c Config) VaultAccount() (ledger.Address, error) {
	return parseAccount("vault_address", c.VaultAddress)
}

func (c Config) OwnerAccount() (ledger.Address, error) {
	return parseAccount("owner", c.Owner)
}

func (c Config) ProtocolAccounts() ([]ledger.Address, error) {
	return parseAccounts("protocol", c.Protocol)
}

func (c Config) OperatorAccounts() ([]ledger.Address, error) {
	return parseAccounts("operators", c.Operators)
}

// DirectoryEntries returns the static directory entries keyed by contract name.
func (c Config) DirectoryEntries() (map[string]ledger.Address, error) {
	out := make(map[string]ledger.Address, len(c.Directory.Entries))
	for name, s := range c.Directory.Entries {
		a, err := ledger.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("%w: directory entry %s: %w", ErrInvalidAddress, name, err)
		}
		out[name] = a
	}
	return out, nil
}

func parseAccount(field, s string) (ledger.Address, error) {
	a, err := ledger.ParseAddress(s)
	if err != nil {
		return ledger.ZeroAddress, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, field, err)
	}
	if a.IsZero() {
		return ledger.ZeroAddress, fmt.Errorf("%w: %s is the zero address", ErrInvalidAddress, field)
	}
	return a, nil
}

func parseAccounts(field string, list []string) ([]ledger.Address, error) {
	out := make([]ledger.Address, 0, len(list))
	for i, s := range list {
		a, err := parseAccount(fmt.Sprintf("%s[%d]", field, i), s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// NewLogger builds the process logger. It writes JSON to LogFile, or
// human-readable lines to stderr when LogFile is empty.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLogLevel, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.LogFile == "" {
		zc.Encoding = "console"
		zc.OutputPaths = []string{"stderr"}
	} else {
		zc.OutputPaths = []string{cfg.LogFile}
	}
	return zc.Build()
}
