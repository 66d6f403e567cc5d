package cow

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/adapters/senders"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/orders"
)

var (
	weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) Address() common.Address {
	return m.Called().Get(0).(common.Address)
}

func (m *mockSigner) SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error) {
	args := m.Called(ctx, data)
	return args.Get(0).([]byte), args.Error(1)
}

func validOrder() Order {
	return Order{
		SellToken:  weth,
		BuyToken:   usdc,
		SellAmount: big.NewInt(1e18),
		BuyAmount:  big.NewInt(3_000_000_000),
		ValidTo:    1_900_000_000,
	}
}

func TestNewOrder_MissingSellToken(t *testing.T) {
	signer := new(mockSigner)

	o := validOrder()
	o.SellToken = common.Address{}
	order, err := NewOrder(o)
	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Contains(t, err.Error(), "sellToken")

	// nothing was signed
	signer.AssertNotCalled(t, "SignTypedData", mock.Anything, mock.Anything)
}

func TestNewOrder_MissingFields(t *testing.T) {
	edits := map[string]func(o *Order){
		"buyToken":   func(o *Order) { o.BuyToken = common.Address{} },
		"sellAmount": func(o *Order) { o.SellAmount = nil },
		"buyAmount":  func(o *Order) { o.BuyAmount = big.NewInt(-1) },
		"validTo":    func(o *Order) { o.ValidTo = 0 },
	}
	for field, edit := range edits {
		t.Run(field, func(t *testing.T) {
			o := validOrder()
			edit(&o)
			_, err := NewOrder(o)
			var mfe *domain.MissingFieldError
			require.ErrorAs(t, err, &mfe)
			assert.Equal(t, field, mfe.Field)
		})
	}
}

func TestNewOrder_UnknownKind(t *testing.T) {
	o := validOrder()
	o.Kind = "limit"
	_, err := NewOrder(o)
	assert.ErrorIs(t, err, domain.ErrUnknownFlag)
}

func TestOrder_Defaults(t *testing.T) {
	order, err := NewOrder(validOrder())
	require.NoError(t, err)
	assert.Equal(t, KindSell, order.Kind)
	assert.Equal(t, BalanceERC20, order.SellTokenBalance)
	assert.Equal(t, BalanceERC20, order.BuyTokenBalance)
	assert.Equal(t, 0, order.FeeAmount.Sign())
	assert.Equal(t, Settlement, order.Settlement)
}

func TestOrder_SignAndTrade(t *testing.T) {
	signer, err := senders.NewKeySigner(senders.Maker, senders.DefaultMakerKey)
	require.NoError(t, err)

	order, err := NewOrder(validOrder())
	require.NoError(t, err)

	sig, err := order.Sign(context.Background(), signer)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	recovered, err := orders.Recover(order.TypedData(), sig)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)

	trade, err := order.Trade(0, 1, nil, sig)
	require.NoError(t, err)
	assert.Equal(t, int64(0), trade.SellTokenIndex.Int64())
	assert.Equal(t, int64(1), trade.BuyTokenIndex.Int64())
	assert.Equal(t, uint64(0), trade.Flags.Uint64())
	assert.Equal(t, 0, trade.ExecutedAmount.Sign())

	_, err = order.Trade(0, 1, nil, sig[:64])
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestOrder_SignerError(t *testing.T) {
	signer := new(mockSigner)
	signer.On("SignTypedData", mock.Anything, mock.Anything).Return([]byte(nil), assert.AnError)

	order, err := NewOrder(validOrder())
	require.NoError(t, err)

	_, err = order.Sign(context.Background(), signer)
	assert.ErrorIs(t, err, assert.AnError)
	signer.AssertExpectations(t)
}
