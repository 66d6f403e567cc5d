package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

func newTestViper(t *testing.T, root string) *viper.Viper {
	t.Helper()
	return SetupViper(root, &cobra.Command{Use: "test"})
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
}

func TestProvider_Defaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Provider(newTestViper(t, root))
	require.NoError(t, err)

	assert.Equal(t, "defaults", cfg.ConfigSource)
	assert.Equal(t, uint64(1), cfg.ChainID)
	assert.Equal(t, "8545", cfg.Fork.Port)
	assert.Equal(t, "table", cfg.Format)
	assert.Equal(t, domain.ProtocolOneInchUnoswap, cfg.Reference)
	assert.Empty(t, cfg.Protocols)
	assert.Equal(t, domain.MainnetContracts(), cfg.Contracts)

	hundredEth, _ := new(big.Int).SetString("100000000000000000000", 10)
	assert.Equal(t, 0, hundredEth.Cmp(cfg.Accounts.FundETH))

	require.Len(t, cfg.Scenarios, 2)
	wethUsdc, ok := cfg.Scenario("weth-usdc")
	require.True(t, ok)
	assert.Equal(t, "WETH", wethUsdc.Sell.Symbol)
	assert.Equal(t, "USDC", wethUsdc.Buy.Symbol)
	assert.Equal(t, big.NewInt(100_000_000_000_000_000), wethUsdc.SellAmount)
	assert.Equal(t, big.NewInt(10_000), wethUsdc.BuyAmount)
	assert.Equal(t, uint32(500), wethUsdc.Fee)
	assert.Equal(t, uint64(1), wethUsdc.SlippagePct)
	assert.Equal(t, domain.AllProtocols, wethUsdc.Protocols)

	usdc := cfg.Tokens["USDC"]
	assert.Equal(t, uint8(6), usdc.Decimals)
	assert.Equal(t, big.NewInt(10_000_000_000), usdc.Fund)
	assert.NotEqual(t, common.Address{}, usdc.Whale)
	assert.Equal(t, common.Address{}, cfg.Tokens["WETH"].Whale)
}

func TestProvider_File(t *testing.T) {
	root := t.TempDir()
	t.Setenv("GASBENCH_TEST_FORK_URL", "https://mainnet.example")
	writeConfig(t, root, `
[fork]
rpc_url = "${GASBENCH_TEST_FORK_URL}"
block_number = 19000000
port = 8600

[tokens.wbtc]
address = "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"
decimals = 8
whale = "0x5Ee5bf7ae06D1Be5997A1A72006FE6C607eC6DE8"
fund = "1"

[protocols.cow]
address = "0x0000000000000000000000000000000000000c0c"

[[scenarios]]
name = "wbtc-weth"
sell = "WBTC"
buy = "weth"
sell_amount = "0.01"
buy_amount = "0.1"
protocols = ["0x-rfq", "cow"]
slippage = 3
`)

	cfg, err := Provider(newTestViper(t, root))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, ConfigFileName), cfg.ConfigSource)
	assert.Equal(t, "https://mainnet.example", cfg.Fork.RPCURL)
	assert.Equal(t, uint64(19_000_000), cfg.Fork.BlockNumber)
	assert.Equal(t, "8600", cfg.Fork.Port)

	// defaults survive next to the new token
	assert.Contains(t, cfg.Tokens, "WETH")
	assert.Contains(t, cfg.Tokens, "WBTC")

	assert.Equal(t, common.HexToAddress("0xc0c"), cfg.Contracts.GPv2Settlement)

	require.Len(t, cfg.Scenarios, 1)
	s := cfg.Scenarios[0]
	assert.Equal(t, big.NewInt(1_000_000), s.SellAmount)
	assert.Equal(t, []domain.ProtocolKey{domain.ProtocolZeroExRFQ, domain.ProtocolCoW}, s.Protocols)
	assert.Equal(t, uint64(3), s.SlippagePct)
}

func TestProvider_Overrides(t *testing.T) {
	root := t.TempDir()
	v := newTestViper(t, root)
	v.Set("protocol", []string{"cow", "uniswapx", "cow"})
	v.Set("reference", "1INCH-LOP")
	v.Set("format", "JSON")
	v.Set("fork_url", "http://override")
	v.Set("no_verify", true)

	cfg, err := Provider(v)
	require.NoError(t, err)

	assert.Equal(t, []domain.ProtocolKey{domain.ProtocolCoW, domain.ProtocolUniswapX}, cfg.Protocols)
	assert.Equal(t, domain.ProtocolOneInchLOP, cfg.Reference)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "http://override", cfg.Fork.RPCURL)
	assert.True(t, cfg.NoVerify)
}

func TestProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		set     map[string]interface{}
		wantErr error
		wantMsg string
	}{
		{
			name: "unknown token",
			config: `
[[scenarios]]
name = "x"
sell = "WETH"
buy = "PEPE"
sell_amount = "1"
buy_amount = "1"
protocols = ["cow"]
`,
			wantErr: domain.ErrUnknownToken,
		},
		{
			name: "unknown protocol in scenario",
			config: `
[[scenarios]]
name = "x"
sell = "WETH"
buy = "USDC"
sell_amount = "1"
buy_amount = "1"
protocols = ["kyber"]
`,
			wantErr: domain.ErrUnknownProtocol,
		},
		{
			name: "swap without pool",
			config: `
[[scenarios]]
name = "x"
sell = "WETH"
buy = "USDC"
sell_amount = "1"
buy_amount = "1"
protocols = ["uniswap-universal"]
`,
			wantMsg: "scenario x: pool and fee are required for uniswap-universal",
		},
		{
			name: "zero amount",
			config: `
[[scenarios]]
name = "x"
sell = "WETH"
buy = "USDC"
sell_amount = "0"
buy_amount = "1"
protocols = ["cow"]
`,
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "unknown protocol override",
			config: `
[protocols.kyber]
address = "0x0000000000000000000000000000000000000001"
`,
			wantErr: domain.ErrUnknownProtocol,
		},
		{
			name: "unknown key",
			config: `
[fork]
rpc = "http://typo"
`,
			wantMsg: `unknown key "fork.rpc" in gasbench.toml`,
		},
		{
			name:    "unknown reference",
			set:     map[string]interface{}{"reference": "kyber"},
			wantErr: domain.ErrUnknownProtocol,
		},
		{
			name:    "unknown format",
			set:     map[string]interface{}{"format": "xml"},
			wantMsg: `unknown format "xml" (expected one of table, json, yaml)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.config != "" {
				writeConfig(t, root, tt.config)
			}
			v := newTestViper(t, root)
			for k, val := range tt.set {
				v.Set(k, val)
			}

			_, err := Provider(v)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	t.Chdir(nested)
	got, err := filepath.EvalSymlinks(FindProjectRoot())
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
