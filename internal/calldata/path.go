package calldata

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

const (
	feeSize = 3
	maxFee  = 1<<24 - 1
)

// EncodeV3Path packs token0 ++ fee0 ++ token1 ++ ... ++ tokenN the way Uniswap V3 style routers read it.
// len(tokens) must equal len(fees)+1.
func EncodeV3Path(tokens []common.Address, fees []uint32) ([]byte, error) {
	if len(tokens) != len(fees)+1 {
		return nil, &domain.PathLengthError{Tokens: len(tokens), Fees: len(fees)}
	}
	for i, fee := range fees {
		if fee > maxFee {
			return nil, fmt.Errorf("%w: fee[%d] = %d does not fit in uint24", domain.ErrInvalidAmount, i, fee)
		}
	}

	out := make([]byte, 0, common.AddressLength*len(tokens)+feeSize*len(fees))
	for i, fee := range fees {
		out = append(out, tokens[i].Bytes()...)
		out = append(out, byte(fee>>16), byte(fee>>8), byte(fee))
	}
	return append(out, tokens[len(tokens)-1].Bytes()...), nil
}

// DecodeV3Path splits an encoded path back into tokens and fees
func DecodeV3Path(path []byte) ([]common.Address, []uint32, error) {
	const hop = common.AddressLength + feeSize
	if len(path) < common.AddressLength || (len(path)-common.AddressLength)%hop != 0 {
		return nil, nil, fmt.Errorf("%w: %d bytes is not a valid path", domain.ErrPathLength, len(path))
	}

	var (
		tokens []common.Address
		fees   []uint32
	)
	for off := 0; ; off += hop {
		tokens = append(tokens, common.BytesToAddress(path[off:off+common.AddressLength]))
		if off+common.AddressLength == len(path) {
			break
		}
		f := path[off+common.AddressLength : off+hop]
		fees = append(fees, uint32(f[0])<<16|uint32(f[1])<<8|uint32(f[2]))
	}
	return tokens, fees, nil
}
