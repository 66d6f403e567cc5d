package calldata

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// Bit offsets of the flags the 1inch AggregationRouterV6 reads from a packed dex word.
// The pool address occupies bits 0-159.
const (
	ZeroForOneOffset = 247
	UnwrapWETHOffset = 252
	ProtocolOffset   = 253

	addressBits = 160
)

// PoolProtocol is the dex family tag stored in bits 253-255
type PoolProtocol uint8

const (
	PoolUniswapV2 PoolProtocol = 0
	PoolUniswapV3 PoolProtocol = 1
	PoolCurve     PoolProtocol = 2
)

func (p PoolProtocol) String() string {
	switch p {
	case PoolUniswapV2:
		return "v2"
	case PoolUniswapV3:
		return "v3"
	case PoolCurve:
		return "curve"
	default:
		return fmt.Sprintf("protocol(%d)", uint8(p))
	}
}

// ParsePoolProtocol resolves "v2", "v3" or "curve"
func ParsePoolProtocol(s string) (PoolProtocol, error) {
	switch s {
	case "v2", "uniswap-v2":
		return PoolUniswapV2, nil
	case "v3", "uniswap-v3":
		return PoolUniswapV3, nil
	case "curve":
		return PoolCurve, nil
	default:
		return 0, &domain.UnknownFlagError{Flag: "pool protocol", Value: s}
	}
}

// PoolFlags are the routing flags packed next to a pool address
type PoolFlags struct {
	// ZeroForOne swaps token0 for token1
	ZeroForOne bool
	// UnwrapWETH unwraps the output to ETH; set on the final hop only
	UnwrapWETH bool
	Protocol   PoolProtocol
}

var addressMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), addressBits), big.NewInt(1))

// PackPool ORs the routing flags into the high bits of the pool address
func PackPool(pool common.Address, flags PoolFlags) (*big.Int, error) {
	if pool == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero pool address", domain.ErrInvalidPool)
	}
	if flags.Protocol > PoolCurve {
		return nil, &domain.UnknownFlagError{Flag: "pool protocol", Value: flags.Protocol.String()}
	}

	word := new(big.Int).SetBytes(pool.Bytes())
	if flags.ZeroForOne {
		word.SetBit(word, ZeroForOneOffset, 1)
	}
	if flags.UnwrapWETH {
		word.SetBit(word, UnwrapWETHOffset, 1)
	}
	word.Or(word, new(big.Int).Lsh(big.NewInt(int64(flags.Protocol)), ProtocolOffset))
	return word, nil
}

// UnpackPool splits a packed dex word back into its address and flags
func UnpackPool(word *big.Int) (common.Address, PoolFlags) {
	addr := common.BigToAddress(new(big.Int).And(word, addressMask))
	flags := PoolFlags{
		ZeroForOne: word.Bit(ZeroForOneOffset) == 1,
		UnwrapWETH: word.Bit(UnwrapWETHOffset) == 1,
		Protocol:   PoolProtocol(new(big.Int).Rsh(word, ProtocolOffset).Uint64()),
	}
	return addr, flags
}
