// Package cow builds CoW Protocol (GPv2) orders and the settlement trades that execute them.
package cow

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/orders"
)

const (
	DomainName    = "Gnosis Protocol"
	DomainVersion = "v2"
)

var (
	// Settlement is the mainnet GPv2Settlement contract
	Settlement = common.HexToAddress("0x9008D19f58AAbD9eD0D60971565AA8510560ab41")
	// VaultRelayer is the contract owners approve to pull sell tokens
	VaultRelayer = common.HexToAddress("0xC92E8bdf79f0507f65a392b0ab4667716BFE0110")
)

var orderTypes = apitypes.Types{
	"Order": {
		{Name: "sellToken", Type: "address"},
		{Name: "buyToken", Type: "address"},
		{Name: "receiver", Type: "address"},
		{Name: "sellAmount", Type: "uint256"},
		{Name: "buyAmount", Type: "uint256"},
		{Name: "validTo", Type: "uint32"},
		{Name: "appData", Type: "bytes32"},
		{Name: "feeAmount", Type: "uint256"},
		{Name: "kind", Type: "string"},
		{Name: "partiallyFillable", Type: "bool"},
		{Name: "sellTokenBalance", Type: "string"},
		{Name: "buyTokenBalance", Type: "string"},
	},
}

// Order is a GPv2 order. The owner is recovered from the signature, so it has no maker field.
type Order struct {
	SellToken         common.Address
	BuyToken          common.Address
	Receiver          common.Address // zero pays the owner
	SellAmount        *big.Int
	BuyAmount         *big.Int
	ValidTo           uint32
	AppData           [32]byte
	FeeAmount         *big.Int
	Kind              OrderKind
	PartiallyFillable bool
	SellTokenBalance  TokenBalance
	BuyTokenBalance   TokenBalance

	ChainID    *big.Int
	Settlement common.Address
}

// NewOrder validates o and fills in protocol defaults: a sell order on erc20 balances with no fee
func NewOrder(o Order) (*Order, error) {
	err := orders.Require("cow").
		Address("sellToken", o.SellToken).
		Address("buyToken", o.BuyToken).
		Amount("sellAmount", o.SellAmount).
		Amount("buyAmount", o.BuyAmount).
		Err()
	if err != nil {
		return nil, err
	}
	if o.ValidTo == 0 {
		return nil, orders.Require("cow").Amount("validTo", nil).Err()
	}

	if o.Kind == "" {
		o.Kind = KindSell
	}
	if o.SellTokenBalance == "" {
		o.SellTokenBalance = BalanceERC20
	}
	if o.BuyTokenBalance == "" {
		o.BuyTokenBalance = BalanceERC20
	}
	o.FeeAmount = orders.OrZero(o.FeeAmount)
	if o.Settlement == (common.Address{}) {
		o.Settlement = Settlement
	}

	// reject unknown enum values before anything is signed
	if _, err := o.Flags(SchemeEIP712); err != nil {
		return nil, err
	}
	return &o, nil
}

// Flags returns the trade flags for this order signed with scheme
func (o *Order) Flags(scheme SigningScheme) (*big.Int, error) {
	return EncodeTradeFlags(TradeFlags{
		Kind:              o.Kind,
		PartiallyFillable: o.PartiallyFillable,
		SellTokenBalance:  o.SellTokenBalance,
		BuyTokenBalance:   o.BuyTokenBalance,
		SigningScheme:     scheme,
	})
}

// TypedData returns the EIP-712 payload the owner signs
func (o *Order) TypedData() apitypes.TypedData {
	return orders.NewTypedData(
		orders.Domain(DomainName, DomainVersion, o.ChainID, o.Settlement),
		"Order",
		orderTypes,
		apitypes.TypedDataMessage{
			"sellToken":         orders.Addr(o.SellToken),
			"buyToken":          orders.Addr(o.BuyToken),
			"receiver":          orders.Addr(o.Receiver),
			"sellAmount":        o.SellAmount,
			"buyAmount":         o.BuyAmount,
			"validTo":           orders.Uint(uint64(o.ValidTo)),
			"appData":           orders.Bytes32(o.AppData),
			"feeAmount":         o.FeeAmount,
			"kind":              string(o.Kind),
			"partiallyFillable": o.PartiallyFillable,
			"sellTokenBalance":  string(o.SellTokenBalance),
			"buyTokenBalance":   string(o.BuyTokenBalance),
		},
	)
}

// Sign has the owner sign the order with the EIP-712 scheme
func (o *Order) Sign(ctx context.Context, signer orders.TypedDataSigner) ([]byte, error) {
	return orders.Sign(ctx, signer, o.TypedData())
}

// Trade builds the settlement trade for this order. sellIndex and buyIndex point into the
// settlement's token list; executed is the traded amount for partially fillable orders.
func (o *Order) Trade(sellIndex, buyIndex int, executed *big.Int, sig []byte) (calldata.GPv2Trade, error) {
	flags, err := o.Flags(SchemeEIP712)
	if err != nil {
		return calldata.GPv2Trade{}, err
	}
	if _, err := orders.NormalizeV(sig); err != nil {
		return calldata.GPv2Trade{}, err
	}
	return calldata.GPv2Trade{
		SellTokenIndex: big.NewInt(int64(sellIndex)),
		BuyTokenIndex:  big.NewInt(int64(buyIndex)),
		Receiver:       o.Receiver,
		SellAmount:     o.SellAmount,
		BuyAmount:      o.BuyAmount,
		ValidTo:        o.ValidTo,
		AppData:        o.AppData,
		FeeAmount:      o.FeeAmount,
		Flags:          flags,
		ExecutedAmount: orders.OrZero(executed),
		Signature:      sig,
	}, nil
}
