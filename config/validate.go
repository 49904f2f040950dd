package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/stakevault/libstakevault-go/rewards"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validNetworks = map[string]bool{
	"mainnet": true,
	"testnet": true,
	"devnet":  true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid. Account
// fields left empty are not checked here; commands that need them parse
// them when they run.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if !validNetworks[cfg.Network] {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.MetricsAddr != "" {
		if err := validateAddr(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidListenAddr, err)
		}
	}

	if _, err := cfg.CapAmount(); err != nil {
		return err
	}
	if cfg.TargetAPR > rewards.MaxAPR {
		return fmt.Errorf("%w: %d bps exceeds %d", ErrInvalidAPR, cfg.TargetAPR, rewards.MaxAPR)
	}

	if cfg.VaultAddress != "" {
		if _, err := cfg.VaultAccount(); err != nil {
			return err
		}
	}
	if cfg.Owner != "" {
		if _, err := cfg.OwnerAccount(); err != nil {
			return err
		}
	}
	if _, err := cfg.ProtocolAccounts(); err != nil {
		return err
	}
	if _, err := cfg.OperatorAccounts(); err != nil {
		return err
	}

	if _, err := cfg.DirectoryEntries(); err != nil {
		return err
	}
	d := cfg.Directory
	if d.Zone == "" && (d.Upstream != "" || d.RequireDNSSEC) {
		return fmt.Errorf("%w: upstream and require_dnssec need a zone", ErrInvalidDirectory)
	}
	if d.Zone != "" && d.Upstream == "" {
		return fmt.Errorf("%w: zone %s needs an upstream resolver", ErrInvalidDirectory, d.Zone)
	}
	if d.Upstream != "" {
		if err := validateAddr(d.Upstream); err != nil {
			return fmt.Errorf("%w: upstream: %w", ErrInvalidDirectory, err)
		}
	}

	return nil
}

// validateAddr checks that addr is a valid host:port address.
func validateAddr(addr string) error {
	_, _, err := net.SplitHostPort(addr)
	return err
}
