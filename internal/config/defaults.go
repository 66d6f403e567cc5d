package config

// Mainnet accounts holding enough stablecoins to fund the test accounts
const (
	binance14     = "0x28C6c06298d514Db089934071355E5743bf21d60"
	polygonBridge = "0x40ec5B33f54e0E8A33A975908C5BA1c14e5BbbDf"
)

// USDC/WETH 0.05% on Uniswap V3
const usdcWethPool = "0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640"

func decimals(d uint8) *uint8 { return &d }

// defaultFile is the built-in mainnet configuration that gasbench.toml is merged over
func defaultFile() *gasbenchFile {
	return &gasbenchFile{
		Fork: forkSection{
			Name:    "fork",
			ChainID: 1,
			Port:    8545,
		},
		// Keys are left empty so the senders adapter falls back to the anvil dev accounts
		Accounts: accountsSection{
			FundETH: "100",
		},
		Tokens: map[string]tokenSection{
			"WETH": {
				Address:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
				Decimals: decimals(18),
				Fund:     "10",
			},
			"USDC": {
				Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
				Decimals: decimals(6),
				Whale:    binance14,
				Fund:     "10000",
			},
			"USDT": {
				Address:  "0xdAC17F958D2ee523a2206206994597C13D831ec7",
				Decimals: decimals(6),
				Whale:    binance14,
				Fund:     "10000",
			},
			"DAI": {
				Address:  "0x6B175474E89094C44Da98b954EedeAC495271d0F",
				Decimals: decimals(18),
				Whale:    polygonBridge,
				Fund:     "10000",
			},
		},
		Scenarios: []scenarioSection{
			{
				Name:       "weth-usdc",
				Sell:       "WETH",
				Buy:        "USDC",
				SellAmount: "0.1",
				BuyAmount:  "0.01",
				Pool:       usdcWethPool,
				Fee:        500,
			},
			{
				Name:       "usdc-weth",
				Sell:       "USDC",
				Buy:        "WETH",
				SellAmount: "100",
				BuyAmount:  "0.01",
				Pool:       usdcWethPool,
				Fee:        500,
			},
		},
	}
}
