package calldata

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

var (
	usdcWethPool = common.HexToAddress("0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640")
	maxAddress   = common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff")
)

func TestPackPool_RoundTrip(t *testing.T) {
	pools := []common.Address{
		usdcWethPool,
		maxAddress,
		common.HexToAddress("0x0000000000000000000000000000000000000001"),
	}
	protocols := []PoolProtocol{PoolUniswapV2, PoolUniswapV3, PoolCurve}

	for _, pool := range pools {
		for _, protocol := range protocols {
			for _, zeroForOne := range []bool{false, true} {
				for _, unwrap := range []bool{false, true} {
					flags := PoolFlags{ZeroForOne: zeroForOne, UnwrapWETH: unwrap, Protocol: protocol}

					word, err := PackPool(pool, flags)
					require.NoError(t, err)
					assert.LessOrEqual(t, word.BitLen(), 256)

					addr, decoded := UnpackPool(word)
					assert.Equal(t, pool, addr)
					assert.Equal(t, flags, decoded)

					assert.Equal(t, boolBit(zeroForOne), word.Bit(ZeroForOneOffset))
					assert.Equal(t, boolBit(unwrap), word.Bit(UnwrapWETHOffset))
					assert.Equal(t, boolBit(protocol == PoolUniswapV3), word.Bit(ProtocolOffset))

					// nothing between the address and the lowest flag
					for bit := 160; bit < ZeroForOneOffset; bit++ {
						require.Zero(t, word.Bit(bit), "bit %d", bit)
					}
				}
			}
		}
	}
}

func TestPackPool_KnownValue(t *testing.T) {
	word, err := PackPool(usdcWethPool, PoolFlags{ZeroForOne: true, Protocol: PoolUniswapV3})
	require.NoError(t, err)

	expected, ok := new(big.Int).SetString("20800000000000000000000088e6a0c2ddd26feeb64f039a2c41296fcb3f5640", 16)
	require.True(t, ok)
	assert.Equal(t, expected, word)
}

func TestPackPool_ZeroAddress(t *testing.T) {
	_, err := PackPool(common.Address{}, PoolFlags{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidPool))
}

func TestPackPool_UnknownProtocol(t *testing.T) {
	_, err := PackPool(usdcWethPool, PoolFlags{Protocol: PoolProtocol(7)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownFlag))
}

func TestParsePoolProtocol(t *testing.T) {
	p, err := ParsePoolProtocol("v3")
	require.NoError(t, err)
	assert.Equal(t, PoolUniswapV3, p)

	_, err = ParsePoolProtocol("balancer")
	assert.ErrorIs(t, err, domain.ErrUnknownFlag)
}

func boolBit(b bool) uint {
	if b {
		return 1
	}
	return 0
}
