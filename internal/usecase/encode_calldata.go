package usecase

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// Encoding kinds
const (
	EncodePool    = "pool"
	EncodePath    = "path"
	EncodePercent = "percent"
)

// EncodeCalldataParams are the raw command line inputs of an encoding
type EncodeCalldataParams struct {
	Kind string

	// pool
	Pool         string
	ZeroForOne   bool
	UnwrapWETH   bool
	PoolProtocol string

	// path: token, fee, token, fee, ..., token
	Path []string

	// percent
	Amount     string
	Percentage string
}

// EncodeCalldataResult holds an encoding and the values it was built from
type EncodeCalldataResult struct {
	Kind  string
	Hex   string
	Value *big.Int // packed pool word or computed percentage
	// Decoded lists the inputs as read back from the encoding
	Decoded []string
}

// EncodeCalldata exposes the parameter encoders on the command line
type EncodeCalldata struct{}

// NewEncodeCalldata creates a new EncodeCalldata use case
func NewEncodeCalldata() *EncodeCalldata {
	return &EncodeCalldata{}
}

// Run performs the encoding named by params.Kind
func (uc *EncodeCalldata) Run(ctx context.Context, params EncodeCalldataParams) (*EncodeCalldataResult, error) {
	switch params.Kind {
	case EncodePool:
		return uc.pool(params)
	case EncodePath:
		return uc.path(params)
	case EncodePercent:
		return uc.percent(params)
	default:
		return nil, fmt.Errorf("unknown encoding: %s", params.Kind)
	}
}

func (uc *EncodeCalldata) pool(params EncodeCalldataParams) (*EncodeCalldataResult, error) {
	if !common.IsHexAddress(params.Pool) {
		return nil, fmt.Errorf("%w: %q is not an address", domain.ErrInvalidPool, params.Pool)
	}
	protocol := calldata.PoolUniswapV3
	if params.PoolProtocol != "" {
		p, err := calldata.ParsePoolProtocol(params.PoolProtocol)
		if err != nil {
			return nil, err
		}
		protocol = p
	}

	word, err := calldata.PackPool(common.HexToAddress(params.Pool), calldata.PoolFlags{
		ZeroForOne: params.ZeroForOne,
		UnwrapWETH: params.UnwrapWETH,
		Protocol:   protocol,
	})
	if err != nil {
		return nil, err
	}

	addr, flags := calldata.UnpackPool(word)
	return &EncodeCalldataResult{
		Kind:  EncodePool,
		Hex:   hexutil.Encode(common.LeftPadBytes(word.Bytes(), 32)),
		Value: word,
		Decoded: []string{
			"pool: " + addr.Hex(),
			"protocol: " + flags.Protocol.String(),
			fmt.Sprintf("zeroForOne: %t", flags.ZeroForOne),
			fmt.Sprintf("unwrapWeth: %t", flags.UnwrapWETH),
		},
	}, nil
}

func (uc *EncodeCalldata) path(params EncodeCalldataParams) (*EncodeCalldataResult, error) {
	var tokens []common.Address
	var fees []uint32
	for i, arg := range params.Path {
		if i%2 == 0 {
			if !common.IsHexAddress(arg) {
				return nil, fmt.Errorf("path element %d: %q is not a token address", i, arg)
			}
			tokens = append(tokens, common.HexToAddress(arg))
			continue
		}
		fee, err := strconv.ParseUint(arg, 10, 24)
		if err != nil {
			return nil, fmt.Errorf("path element %d: %q is not a uint24 fee", i, arg)
		}
		fees = append(fees, uint32(fee))
	}

	path, err := calldata.EncodeV3Path(tokens, fees)
	if err != nil {
		return nil, err
	}

	decodedTokens, decodedFees, err := calldata.DecodeV3Path(path)
	if err != nil {
		return nil, err
	}
	decoded := make([]string, 0, len(decodedTokens)+len(decodedFees))
	for i, t := range decodedTokens {
		decoded = append(decoded, "token: "+t.Hex())
		if i < len(decodedFees) {
			decoded = append(decoded, fmt.Sprintf("fee: %d", decodedFees[i]))
		}
	}
	return &EncodeCalldataResult{Kind: EncodePath, Hex: hexutil.Encode(path), Decoded: decoded}, nil
}

func (uc *EncodeCalldata) percent(params EncodeCalldataParams) (*EncodeCalldataResult, error) {
	amount, ok := new(big.Int).SetString(params.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidAmount, params.Amount)
	}
	pct, err := strconv.ParseUint(params.Percentage, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPercentage, params.Percentage)
	}
	value, err := calldata.PercentageOf(amount, pct)
	if err != nil {
		return nil, err
	}
	return &EncodeCalldataResult{
		Kind:    EncodePercent,
		Hex:     hexutil.EncodeBig(value),
		Value:   value,
		Decoded: []string{fmt.Sprintf("%s * %d / 100", amount, pct)},
	}, nil
}
