package network

import "fmt"

// Environment variables consulted by ResolveConfig.
const (
	EnvRPCURL  = "STAKEVAULT_RPC_URL"
	EnvRPCUser = "STAKEVAULT_RPC_USER"
	EnvRPCPass = "STAKEVAULT_RPC_PASS"
)

// RPCConfig holds the connection parameters for a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url" toml:"url"`
	User     string `json:"user" toml:"user"`
	Password string `json:"password" toml:"password"`
	Network  string `json:"network" toml:"network,omitempty"`
}

// NetworkPresets contains default RPC configurations for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"devnet":  {URL: "http://localhost:8545"},
	"testnet": {URL: "http://localhost:8545", User: "stakevault", Password: "stakevault"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. CLI flags (highest priority)
//  2. Environment variables (STAKEVAULT_RPC_URL, STAKEVAULT_RPC_USER, STAKEVAULT_RPC_PASS)
//  3. Network presets (lowest priority, devnet/testnet only)
//
// For mainnet, explicit configuration is required -- there is no preset.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if v := env[EnvRPCURL]; v != "" {
		result.URL = v
	}
	if v := env[EnvRPCUser]; v != "" {
		result.User = v
	}
	if v := env[EnvRPCPass]; v != "" {
		result.Password = v
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit RPC configuration (set --rpc-url, %s, or config file)", network, EnvRPCURL)
	}
	return &result, nil
}
