package domain

import (
	"fmt"
	"strings"
)

// ProtocolKey identifies one execution path in the gas comparison
type ProtocolKey string

const (
	ProtocolOneInchUnoswap   ProtocolKey = "1inch-unoswap"
	ProtocolOneInchLOP       ProtocolKey = "1inch-lop"
	ProtocolUniswapUniversal ProtocolKey = "uniswap-universal"
	ProtocolUniswapX         ProtocolKey = "uniswapx"
	ProtocolZeroExRFQ        ProtocolKey = "0x-rfq"
	ProtocolParaswapRFQ      ProtocolKey = "paraswap-rfq"
	ProtocolCoW              ProtocolKey = "cow"
)

// ProtocolKind tells whether a protocol swaps against a pool or fills a signed maker order
type ProtocolKind string

const (
	KindSwap  ProtocolKind = "swap"
	KindOrder ProtocolKind = "order"
)

// AllProtocols lists every protocol in report column order. The first entry is the default reference.
var AllProtocols = []ProtocolKey{
	ProtocolOneInchUnoswap,
	ProtocolOneInchLOP,
	ProtocolUniswapUniversal,
	ProtocolUniswapX,
	ProtocolZeroExRFQ,
	ProtocolParaswapRFQ,
	ProtocolCoW,
}

// Kind returns how the protocol executes a trade
func (p ProtocolKey) Kind() ProtocolKind {
	switch p {
	case ProtocolOneInchUnoswap, ProtocolUniswapUniversal:
		return KindSwap
	default:
		return KindOrder
	}
}

// Index returns the column position of the protocol, or -1 when unknown
func (p ProtocolKey) Index() int {
	for i, k := range AllProtocols {
		if k == p {
			return i
		}
	}
	return -1
}

// ParseProtocol resolves a protocol key, case-insensitively
func ParseProtocol(s string) (ProtocolKey, error) {
	key := ProtocolKey(strings.ToLower(strings.TrimSpace(s)))
	if key.Index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownProtocol, s)
	}
	return key, nil
}

// ParseProtocols resolves a list of protocol keys, keeping input order and dropping duplicates
func ParseProtocols(values []string) ([]ProtocolKey, error) {
	seen := make(map[ProtocolKey]bool, len(values))
	keys := make([]ProtocolKey, 0, len(values))
	for _, v := range values {
		key, err := ParseProtocol(v)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys, nil
}
