package config

import (
	"math/big"
	"time"

	"github.com/trebuchet-org/gasbench/internal/domain"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	ConfigSource string // path of gasbench.toml, or "defaults"

	// Execution settings
	Debug          bool
	NonInteractive bool
	Format         string // table, json or yaml
	Timeout        time.Duration

	// Chain
	ChainID uint64
	Fork    ForkConfig
	// RPCURL points at an already running node. When set no fork is started.
	RPCURL string

	// Benchmark settings
	Reference domain.ProtocolKey
	Protocols []domain.ProtocolKey // empty means every protocol of each scenario
	NoVerify  bool
	KeepFork  bool

	// Resolved configurations
	Accounts  AccountsConfig
	Tokens    map[string]domain.Token
	Contracts domain.Contracts
	Scenarios []domain.Scenario
}

// ForkConfig describes the anvil fork gasbench manages
type ForkConfig struct {
	Name        string
	Port        string
	RPCURL      string // upstream node to fork from
	BlockNumber uint64 // 0 forks at latest
}

// AccountsConfig holds the keys of the two test accounts
type AccountsConfig struct {
	MakerKey string //nolint:gosec // anvil dev key or env var reference
	TakerKey string //nolint:gosec // anvil dev key or env var reference
	// FundETH is the ETH balance in wei each account is given
	FundETH *big.Int
}

// Scenario looks up a configured scenario by name
func (c *RuntimeConfig) Scenario(name string) (domain.Scenario, bool) {
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return domain.Scenario{}, false
}
