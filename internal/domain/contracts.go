package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// Contracts are the deployed protocol contracts gasbench calls, bound by fixed address
type Contracts struct {
	WETH             common.Address `json:"weth"`
	Permit2          common.Address `json:"permit2"`
	OneInchRouter    common.Address `json:"oneInchRouter"`
	UniversalRouter  common.Address `json:"universalRouter"`
	UniswapXReactor  common.Address `json:"uniswapXReactor"`
	ZeroExProxy      common.Address `json:"zeroExProxy"`
	AugustusRFQ      common.Address `json:"augustusRfq"`
	GPv2Settlement   common.Address `json:"gpv2Settlement"`
	GPv2VaultRelayer common.Address `json:"gpv2VaultRelayer"`
}

// MainnetContracts returns the Ethereum mainnet deployments
func MainnetContracts() Contracts {
	return Contracts{
		WETH:             common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		Permit2:          common.HexToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3"),
		OneInchRouter:    common.HexToAddress("0x111111125421cA6dc452d289314280a0f8842A65"),
		UniversalRouter:  common.HexToAddress("0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD"),
		UniswapXReactor:  common.HexToAddress("0x6000da47483062A0D734Ba3dc7576Ce6A0B645C4"),
		ZeroExProxy:      common.HexToAddress("0xDef1C0ded9bec7F1a1670819833240f027b25EfF"),
		AugustusRFQ:      common.HexToAddress("0xe92b586627ccA7a83dC919cc7127196d70f55a06"),
		GPv2Settlement:   common.HexToAddress("0x9008D19f58AAbD9eD0D60971565AA8510560ab41"),
		GPv2VaultRelayer: common.HexToAddress("0xC92E8bdf79f0507f65a392b0ab4667716BFE0110"),
	}
}

// NamedContract pairs a contract address with a display name for error messages
type NamedContract struct {
	Name    string
	Address common.Address
}

// Target returns the contract a protocol's benchmark transaction is sent to
func (c Contracts) Target(p ProtocolKey) NamedContract {
	switch p {
	case ProtocolOneInchUnoswap, ProtocolOneInchLOP:
		return NamedContract{"1inch AggregationRouterV6", c.OneInchRouter}
	case ProtocolUniswapUniversal:
		return NamedContract{"Uniswap UniversalRouter", c.UniversalRouter}
	case ProtocolUniswapX:
		return NamedContract{"UniswapX ExclusiveDutchOrderReactor", c.UniswapXReactor}
	case ProtocolZeroExRFQ:
		return NamedContract{"0x ExchangeProxy", c.ZeroExProxy}
	case ProtocolParaswapRFQ:
		return NamedContract{"Paraswap AugustusRFQ", c.AugustusRFQ}
	case ProtocolCoW:
		return NamedContract{"CoW GPv2Settlement", c.GPv2Settlement}
	default:
		return NamedContract{Name: string(p)}
	}
}

// SetTarget overrides the contract address used by a protocol
func (c *Contracts) SetTarget(p ProtocolKey, addr common.Address) {
	switch p {
	case ProtocolOneInchUnoswap, ProtocolOneInchLOP:
		c.OneInchRouter = addr
	case ProtocolUniswapUniversal:
		c.UniversalRouter = addr
	case ProtocolUniswapX:
		c.UniswapXReactor = addr
	case ProtocolZeroExRFQ:
		c.ZeroExProxy = addr
	case ProtocolParaswapRFQ:
		c.AugustusRFQ = addr
	case ProtocolCoW:
		c.GPv2Settlement = addr
	}
}

// Required lists every contract that must have code on the fork for the given protocols
func (c Contracts) Required(protocols []ProtocolKey) []NamedContract {
	out := []NamedContract{{"WETH", c.WETH}}
	seen := map[common.Address]bool{c.WETH: true}
	add := func(nc NamedContract) {
		if !seen[nc.Address] {
			seen[nc.Address] = true
			out = append(out, nc)
		}
	}
	for _, p := range protocols {
		switch p {
		case ProtocolUniswapUniversal, ProtocolUniswapX:
			add(NamedContract{"Permit2", c.Permit2})
		}
		add(c.Target(p))
	}
	return out
}
