package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"devnet\")")

	// ErrInvalidListenAddr indicates the metrics listen address is malformed.
	ErrInvalidListenAddr = errors.New("config: invalid listen address")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigFile indicates the configuration file is not valid TOML.
	ErrInvalidConfigFile = errors.New("config: invalid configuration file")

	// ErrInvalidCap indicates the deposit cap is not a base-10 integer.
	ErrInvalidCap = errors.New("config: invalid deposit cap")

	// ErrInvalidAPR indicates the target APR is above the supported maximum.
	ErrInvalidAPR = errors.New("config: invalid target APR")

	// ErrInvalidAddress indicates an account address could not be parsed.
	ErrInvalidAddress = errors.New("config: invalid address")

	// ErrInvalidDirectory indicates the directory settings are inconsistent.
	ErrInvalidDirectory = errors.New("config: invalid directory settings")
)
