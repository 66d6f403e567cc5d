package zeroex

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/adapters/senders"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/orders"
)

var (
	weth  = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc  = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	taker = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func rfqOrder(maker common.Address) RfqOrder {
	return RfqOrder{
		MakerToken:  weth,
		TakerToken:  usdc,
		MakerAmount: big.NewInt(1e18),
		TakerAmount: big.NewInt(3_000_000_000),
		Maker:       maker,
		Taker:       taker,
		TxOrigin:    taker,
		Expiry:      1_900_000_000,
		Salt:        big.NewInt(1),
	}
}

func TestRfqOrder_Sign(t *testing.T) {
	signer, err := senders.NewKeySigner(senders.Maker, senders.DefaultMakerKey)
	require.NoError(t, err)

	order, err := NewRfqOrder(rfqOrder(signer.Address()))
	require.NoError(t, err)
	assert.Equal(t, ExchangeProxy, order.Proxy)

	sig, err := order.Sign(context.Background(), signer)
	require.NoError(t, err)
	assert.Equal(t, SignatureTypeEIP712, sig.SignatureType)
	assert.Contains(t, []uint8{27, 28}, sig.V)

	rsv := orders.RSV{R: sig.R, S: sig.S, V: sig.V}
	recovered, err := orders.Recover(order.TypedData(), rsv.Bytes())
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)

	data, err := order.FillCalldata(sig)
	require.NoError(t, err)
	// selector + 10 order words + 4 signature words + amount
	assert.Len(t, data, 4+15*32)
}

func TestNewRfqOrder_Validation(t *testing.T) {
	maker := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	o := rfqOrder(maker)
	o.TakerToken = common.Address{}
	_, err := NewRfqOrder(o)
	assert.ErrorIs(t, err, domain.ErrMissingField)

	o = rfqOrder(maker)
	o.TxOrigin = common.Address{}
	_, err = NewRfqOrder(o)
	assert.ErrorIs(t, err, domain.ErrMissingField)

	o = rfqOrder(maker)
	o.Expiry = 0
	_, err = NewRfqOrder(o)
	assert.ErrorIs(t, err, domain.ErrMissingField)

	o = rfqOrder(maker)
	o.MakerAmount = new(big.Int).Lsh(big.NewInt(1), 128)
	_, err = NewRfqOrder(o)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestLimitOrder_Sign(t *testing.T) {
	signer, err := senders.NewKeySigner(senders.Maker, senders.DefaultMakerKey)
	require.NoError(t, err)

	order, err := NewLimitOrder(LimitOrder{
		MakerToken:  weth,
		TakerToken:  usdc,
		MakerAmount: big.NewInt(1e18),
		TakerAmount: big.NewInt(3_000_000_000),
		Maker:       signer.Address(),
		Expiry:      1_900_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, order.TakerTokenFeeAmount.Sign())

	sig, err := order.Sign(context.Background(), signer)
	require.NoError(t, err)

	rsv := orders.RSV{R: sig.R, S: sig.S, V: sig.V}
	recovered, err := orders.Recover(order.TypedData(), rsv.Bytes())
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}
