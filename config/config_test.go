package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

const (
	testOwner    = "0x0101010101010101010101010101010101010101"
	testProtocol = "0x0202020202020202020202020202020202020202"
	testOperator = "0x0303030303030303030303030303030303030303"
	testVault    = "0x7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a7a"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "devnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
		{"Cap", cfg.Cap, "33000000000000000000000"},
		{"TargetAPR", cfg.TargetAPR, uint64(1836)},
		{"MetricsAddr", cfg.MetricsAddr, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
}

func TestDefaultDataDir_EndsWith_DotStakevault(t *testing.T) {
	dir := DefaultDataDir()
	if !strings.HasSuffix(dir, ".stakevault") {
		t.Errorf("DefaultDataDir() = %q, want suffix %q", dir, ".stakevault")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	original := DefaultConfig()
	original.DataDir = "/tmp/test-stakevault"
	original.Network = "testnet"
	original.LogLevel = "debug"
	original.LogFile = "/tmp/stakevault.log"
	original.MetricsAddr = "127.0.0.1:9464"
	original.VaultAddress = testVault
	original.Cap = "1000"
	original.TargetAPR = 500
	original.Owner = testOwner
	original.Protocol = []string{testProtocol}
	original.Operators = []string{testOperator, testProtocol}
	original.RPC.URL = "http://node:8545"
	original.RPC.User = "rpc"
	original.Directory.Entries = map[string]string{"NodeStaking": testOperator}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"DataDir", loaded.DataDir, original.DataDir},
		{"Network", loaded.Network, original.Network},
		{"LogLevel", loaded.LogLevel, original.LogLevel},
		{"LogFile", loaded.LogFile, original.LogFile},
		{"MetricsAddr", loaded.MetricsAddr, original.MetricsAddr},
		{"VaultAddress", loaded.VaultAddress, original.VaultAddress},
		{"Cap", loaded.Cap, original.Cap},
		{"TargetAPR", loaded.TargetAPR, original.TargetAPR},
		{"Owner", loaded.Owner, original.Owner},
		{"Protocol", strings.Join(loaded.Protocol, ","), testProtocol},
		{"Operators", len(loaded.Operators), 2},
		{"RPC.URL", loaded.RPC.URL, original.RPC.URL},
		{"RPC.User", loaded.RPC.User, original.RPC.User},
		{"Directory.Entries", loaded.Directory.Entries["NodeStaking"], testOperator},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", FileName)

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestSaveConfig_OutputContainsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "# StakeVault configuration") {
		t.Error("saved config should start with '# StakeVault configuration'")
	}
}

func TestSaveConfig_OutputContainsKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Owner = testOwner
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	for _, key := range []string{"datadir", "network", "loglevel", "cap", "target_apr", "owner"} {
		if !strings.Contains(content, key+" = ") {
			t.Errorf("saved config should contain key %q", key)
		}
	}
	if !strings.Contains(content, "[rpc]") {
		t.Error("saved config should contain an [rpc] table")
	}
}

// ---------------------------------------------------------------------------
// LoadConfig tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.toml")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidSyntax(t *testing.T) {
	path := writeFile(t, "this-is-not-key-value\n")

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigFile) {
		t.Errorf("LoadConfig bad syntax: got %v, want ErrInvalidConfigFile", err)
	}
}

func TestLoadConfigWrongType(t *testing.T) {
	path := writeFile(t, "target_apr = \"high\"\n")

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigFile) {
		t.Errorf("LoadConfig wrong type: got %v, want ErrInvalidConfigFile", err)
	}
}

func TestLoadConfigCommentsAndDefaults(t *testing.T) {
	path := writeFile(t, `# This is a comment
network = "testnet"

# Another comment
loglevel = "debug"

[rpc]
url = "http://node:8545"

[directory.entries]
NodeStaking = "`+testOperator+`"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.RPC.URL != "http://node:8545" {
		t.Errorf("RPC.URL = %q", cfg.RPC.URL)
	}
	if cfg.Directory.Entries["NodeStaking"] != testOperator {
		t.Errorf("Directory.Entries = %v", cfg.Directory.Entries)
	}
	// Unset fields should retain defaults.
	if cfg.TargetAPR != 1836 {
		t.Errorf("TargetAPR = %d, want default 1836", cfg.TargetAPR)
	}
	if cfg.Cap != DefaultCap {
		t.Errorf("Cap = %q, want default %q", cfg.Cap, DefaultCap)
	}
}

func TestLoadConfigUnknownKeysIgnored(t *testing.T) {
	path := writeFile(t, "futurekey = \"futurevalue\"\nnetwork = \"testnet\"\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig with unknown key: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
}

func TestLoadConfig_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("cannot test permission denial as root")
	}

	path := writeFile(t, "network = \"testnet\"\n")
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(path, 0600) })

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig on unreadable file: expected error, got nil")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("LoadConfig on unreadable file should not return ErrConfigNotFound")
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad_network", func(c *Config) { c.Network = "regtest" }, ErrInvalidNetwork},
		{"empty_network", func(c *Config) { c.Network = "" }, ErrInvalidNetwork},
		{"bad_loglevel", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"bad_metrics_addr", func(c *Config) { c.MetricsAddr = "not-a-valid-addr" }, ErrInvalidListenAddr},
		{"bad_cap", func(c *Config) { c.Cap = "33e21" }, ErrInvalidCap},
		{"apr_too_high", func(c *Config) { c.TargetAPR = 100001 }, ErrInvalidAPR},
		{"bad_owner", func(c *Config) { c.Owner = "0x1234" }, ErrInvalidAddress},
		{"zero_owner", func(c *Config) { c.Owner = "0x0000000000000000000000000000000000000000" }, ErrInvalidAddress},
		{"bad_vault", func(c *Config) { c.VaultAddress = "vault" }, ErrInvalidAddress},
		{"bad_protocol", func(c *Config) { c.Protocol = []string{testProtocol, "nope"} }, ErrInvalidAddress},
		{"bad_operator", func(c *Config) { c.Operators = []string{""} }, ErrInvalidAddress},
		{"bad_entry", func(c *Config) { c.Directory.Entries = map[string]string{"Token": "0xzz"} }, ErrInvalidAddress},
		{"upstream_without_zone", func(c *Config) { c.Directory.Upstream = "127.0.0.1:53" }, ErrInvalidDirectory},
		{"zone_without_upstream", func(c *Config) { c.Directory.Zone = "contracts.example." }, ErrInvalidDirectory},
		{"bad_upstream", func(c *Config) {
			c.Directory.Zone = "contracts.example."
			c.Directory.Upstream = "resolver"
		}, ErrInvalidDirectory},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigFullyPopulated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Owner = testOwner
	cfg.VaultAddress = testVault
	cfg.Protocol = []string{testProtocol}
	cfg.Operators = []string{testOperator}
	cfg.MetricsAddr = ":9464"
	cfg.TargetAPR = 100000
	cfg.Directory.Zone = "contracts.example."
	cfg.Directory.Upstream = "[::1]:53"
	cfg.Directory.RequireDNSSEC = true
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("ValidateConfig: %v", err)
	}
}

func TestValidateConfigValidNetworks(t *testing.T) {
	for _, network := range []string{"mainnet", "testnet", "devnet"} {
		cfg := DefaultConfig()
		cfg.Network = network
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with network %q: %v", network, err)
		}
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"INFO", "Debug", "WARN", "Error", "dEbUg"} {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = level
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with LogLevel %q: %v", level, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Accessor tests
// ---------------------------------------------------------------------------

func TestCapAmount(t *testing.T) {
	cfg := DefaultConfig()
	v, err := cfg.CapAmount()
	if err != nil {
		t.Fatalf("CapAmount: %v", err)
	}
	if v.Dec() != DefaultCap {
		t.Errorf("CapAmount = %s, want %s", v.Dec(), DefaultCap)
	}
}

func TestAccountAccessors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Owner = testOwner
	cfg.Operators = []string{testOperator, testProtocol}

	owner, err := cfg.OwnerAccount()
	if err != nil {
		t.Fatalf("OwnerAccount: %v", err)
	}
	if owner.Hex() != testOwner {
		t.Errorf("OwnerAccount = %s, want %s", owner, testOwner)
	}

	ops, err := cfg.OperatorAccounts()
	if err != nil {
		t.Fatalf("OperatorAccounts: %v", err)
	}
	if len(ops) != 2 || ops[1].Hex() != testProtocol {
		t.Errorf("OperatorAccounts = %v", ops)
	}

	if _, err := cfg.VaultAccount(); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("VaultAccount unset: got %v, want ErrInvalidAddress", err)
	}
}

// ---------------------------------------------------------------------------
// ConfigPath / NewLogger tests
// ---------------------------------------------------------------------------

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.stakevault")
	want := filepath.Join("/home/user/.stakevault", "config.toml")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestConfigPath_WithTrailingSlash(t *testing.T) {
	got := ConfigPath("/foo/")
	want := filepath.Join("/foo", "config.toml")
	if got != want {
		t.Errorf("ConfigPath(%q) = %q, want %q", "/foo/", got, want)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	cfg.LogFile = filepath.Join(t.TempDir(), "vault.log")

	log, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	log.Warn("disk almost full")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "disk almost full") {
		t.Errorf("log file = %q", data)
	}
}

func TestNewLoggerBadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if _, err := NewLogger(cfg); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("NewLogger: got %v, want ErrInvalidLogLevel", err)
	}
}
