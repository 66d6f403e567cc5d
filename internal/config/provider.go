package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/domain/config"
)

// Output formats accepted by --format
var Formats = []string{"table", "json", "yaml"}

const defaultSlippage = 1

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		projectRoot = FindProjectRoot()
	}

	if err := loadDotEnv(projectRoot); err != nil {
		return nil, err
	}

	file := defaultFile()
	source := "defaults"
	path := v.GetString("config")
	if path == "" {
		path = filepath.Join(projectRoot, ConfigFileName)
	}
	userFile, err := loadGasbenchFile(path)
	if err != nil {
		return nil, err
	}
	if userFile != nil {
		file = userFile.merge(file)
		source = path
	} else if v.GetString("config") != "" {
		return nil, fmt.Errorf("config file %s not found", path)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		ConfigSource:   source,
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Format:         strings.ToLower(v.GetString("format")),
		Timeout:        v.GetDuration("timeout"),
		RPCURL:         v.GetString("rpc_url"),
		NoVerify:       v.GetBool("no_verify"),
		KeepFork:       v.GetBool("keep_fork"),
	}

	if !lo.Contains(Formats, cfg.Format) {
		return nil, fmt.Errorf("unknown format %q (expected one of %s)", cfg.Format, strings.Join(Formats, ", "))
	}

	if err := resolveFork(v, file, cfg); err != nil {
		return nil, err
	}
	if err := resolveAccounts(file, cfg); err != nil {
		return nil, err
	}

	cfg.Reference, err = domain.ParseProtocol(v.GetString("reference"))
	if err != nil {
		return nil, fmt.Errorf("invalid reference: %w", err)
	}
	cfg.Protocols, err = domain.ParseProtocols(v.GetStringSlice("protocol"))
	if err != nil {
		return nil, err
	}

	cfg.Tokens, err = resolveTokens(file.Tokens)
	if err != nil {
		return nil, err
	}
	cfg.Contracts, err = resolveContracts(file.Protocols)
	if err != nil {
		return nil, err
	}
	cfg.Scenarios, err = resolveScenarios(file.Scenarios, cfg.Tokens)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func resolveFork(v *viper.Viper, file *gasbenchFile, cfg *config.RuntimeConfig) error {
	cfg.ChainID = file.Fork.ChainID
	if id := v.GetUint64("chain_id"); id != 0 {
		cfg.ChainID = id
	}

	cfg.Fork = config.ForkConfig{
		Name:        file.Fork.Name,
		Port:        strconv.Itoa(file.Fork.Port),
		RPCURL:      file.Fork.RPCURL,
		BlockNumber: file.Fork.BlockNumber,
	}
	if url := v.GetString("fork_url"); url != "" {
		cfg.Fork.RPCURL = url
	}
	if block := v.GetUint64("fork_block"); block != 0 {
		cfg.Fork.BlockNumber = block
	}
	if port := v.GetString("port"); port != "" {
		cfg.Fork.Port = port
	}
	return nil
}

func resolveAccounts(file *gasbenchFile, cfg *config.RuntimeConfig) error {
	fund, err := calldata.ParseUnits(file.Accounts.FundETH, 18)
	if err != nil {
		return fmt.Errorf("invalid accounts.fund_eth: %w", err)
	}
	cfg.Accounts = config.AccountsConfig{
		MakerKey: file.Accounts.MakerKey,
		TakerKey: file.Accounts.TakerKey,
		FundETH:  fund,
	}
	return nil
}

func resolveTokens(raw map[string]tokenSection) (map[string]domain.Token, error) {
	tokens := make(map[string]domain.Token, len(raw))
	for symbol, t := range raw {
		symbol = strings.ToUpper(symbol)
		addr, err := parseAddress("tokens."+symbol+".address", t.Address, true)
		if err != nil {
			return nil, err
		}
		if t.Decimals == nil {
			return nil, fmt.Errorf("tokens.%s: %w", symbol, &domain.MissingFieldError{Order: "token", Field: "decimals"})
		}
		whale, err := parseAddress("tokens."+symbol+".whale", t.Whale, false)
		if err != nil {
			return nil, err
		}

		token := domain.Token{Symbol: symbol, Address: addr, Decimals: *t.Decimals, Whale: whale}
		if t.Fund != "" {
			token.Fund, err = calldata.ParseUnits(t.Fund, token.Decimals)
			if err != nil {
				return nil, fmt.Errorf("invalid tokens.%s.fund: %w", symbol, err)
			}
		}
		tokens[symbol] = token
	}
	return tokens, nil
}

func resolveContracts(raw map[string]protocolSection) (domain.Contracts, error) {
	contracts := domain.MainnetContracts()
	for key, p := range raw {
		protocol, err := domain.ParseProtocol(key)
		if err != nil {
			return contracts, fmt.Errorf("invalid [protocols.%s]: %w", key, err)
		}
		addr, err := parseAddress("protocols."+key+".address", p.Address, true)
		if err != nil {
			return contracts, err
		}
		contracts.SetTarget(protocol, addr)
	}
	return contracts, nil
}

func resolveScenarios(raw []scenarioSection, tokens map[string]domain.Token) ([]domain.Scenario, error) {
	scenarios := make([]domain.Scenario, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, s := range raw {
		if s.Name == "" {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, &domain.MissingFieldError{Order: "scenario", Field: "name"})
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("scenario %s is defined twice", s.Name)
		}
		seen[s.Name] = true

		sell, ok := tokens[strings.ToUpper(s.Sell)]
		if !ok {
			return nil, fmt.Errorf("scenario %s: %w: %q", s.Name, domain.ErrUnknownToken, s.Sell)
		}
		buy, ok := tokens[strings.ToUpper(s.Buy)]
		if !ok {
			return nil, fmt.Errorf("scenario %s: %w: %q", s.Name, domain.ErrUnknownToken, s.Buy)
		}
		if sell.Address == buy.Address {
			return nil, fmt.Errorf("scenario %s sells and buys the same token", s.Name)
		}

		scenario := domain.Scenario{
			Name:        s.Name,
			Sell:        sell,
			Buy:         buy,
			Fee:         s.Fee,
			SlippagePct: defaultSlippage,
			Protocols:   domain.AllProtocols,
		}

		var err error
		if scenario.SellAmount, err = parsePositive(s.Name, "sell_amount", s.SellAmount, sell.Decimals); err != nil {
			return nil, err
		}
		if scenario.BuyAmount, err = parsePositive(s.Name, "buy_amount", s.BuyAmount, buy.Decimals); err != nil {
			return nil, err
		}
		if scenario.Pool, err = parseAddress("scenario "+s.Name+" pool", s.Pool, false); err != nil {
			return nil, err
		}
		if s.Slippage != nil {
			if *s.Slippage > 100 {
				return nil, fmt.Errorf("scenario %s: %w: slippage %d", s.Name, domain.ErrInvalidPercentage, *s.Slippage)
			}
			scenario.SlippagePct = *s.Slippage
		}
		if len(s.Protocols) > 0 {
			if scenario.Protocols, err = domain.ParseProtocols(s.Protocols); err != nil {
				return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
			}
		}

		// Router swaps need a pool to route through
		swaps := lo.Filter(scenario.Protocols, func(p domain.ProtocolKey, _ int) bool {
			return p.Kind() == domain.KindSwap
		})
		if len(swaps) > 0 && (scenario.Pool == (common.Address{}) || scenario.Fee == 0) {
			return nil, fmt.Errorf("scenario %s: pool and fee are required for %s", s.Name, swaps[0])
		}

		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

func parsePositive(scenario, field, value string, decimals uint8) (*big.Int, error) {
	amount, err := calldata.ParseUnits(value, decimals)
	if err != nil {
		return nil, fmt.Errorf("scenario %s %s: %w", scenario, field, err)
	}
	if amount.Sign() == 0 {
		return nil, fmt.Errorf("scenario %s %s: %w: must be positive", scenario, field, domain.ErrInvalidAmount)
	}
	return amount, nil
}

func parseAddress(field, value string, required bool) (common.Address, error) {
	if value == "" {
		if required {
			return common.Address{}, fmt.Errorf("%s is required", field)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, value)
	}
	return common.HexToAddress(value), nil
}

// FindProjectRoot walks up from the current directory to the nearest gasbench.toml.
// Without one, the current directory is the project root and built-in defaults apply.
func FindProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}

	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("GASBENCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "10m")
	v.SetDefault("format", "table")
	v.SetDefault("reference", string(domain.ProtocolOneInchUnoswap))
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		err := v.BindPFlag(flagKey(f.Name), f)
		if err != nil {
			panic(err)
		}
	})

	return v
}

// flagKey maps a flag name onto the viper key it is read back with
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
