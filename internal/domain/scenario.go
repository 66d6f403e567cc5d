package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is an ERC20 asset available on the fork
type Token struct {
	Symbol   string         `json:"symbol"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	// Whale is an account holding enough of the token to fund test accounts by impersonation.
	// Zero for WETH, which is funded by wrapping ETH.
	Whale common.Address `json:"whale,omitempty"`
	// Fund is the amount in base units transferred to each test account during setup
	Fund *big.Int `json:"fund,omitempty"`
}

// Scenario is one benchmarked trade: sell SellAmount of Sell for BuyAmount of Buy
type Scenario struct {
	Name       string
	Sell       Token
	Buy        Token
	SellAmount *big.Int
	BuyAmount  *big.Int
	// Pool is the Uniswap V3 pool used by router-based protocols
	Pool common.Address
	// Fee is the pool fee tier in hundredths of a bip
	Fee uint32
	// SlippagePct lowers the minimum return of router swaps
	SlippagePct uint64
	Protocols   []ProtocolKey
}

// Includes reports whether the scenario benchmarks the given protocol
func (s *Scenario) Includes(p ProtocolKey) bool {
	for _, k := range s.Protocols {
		if k == p {
			return true
		}
	}
	return false
}

// ZeroForOne reports whether selling Sell moves the pool from token0 to token1
func (s *Scenario) ZeroForOne() bool {
	return s.Sell.Address.Cmp(s.Buy.Address) < 0
}

// GasMeasurement is one recorded benchmark transaction
type GasMeasurement struct {
	Scenario string      `json:"scenario"`
	Protocol ProtocolKey `json:"protocol"`
	GasUsed  uint64      `json:"gasUsed"`
	TxHash   common.Hash `json:"txHash"`
}
