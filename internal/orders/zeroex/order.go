// Package zeroex builds 0x Exchange Proxy native RFQ and limit orders.
package zeroex

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/orders"
)

const (
	DomainName    = "ZeroEx"
	DomainVersion = "1.0.0"

	// SignatureTypeEIP712 tells the proxy to verify against the EIP-712 order hash
	SignatureTypeEIP712 uint8 = 2

	amountBits = 128
)

// ExchangeProxy is the mainnet 0x proxy
var ExchangeProxy = common.HexToAddress("0xDef1C0ded9bec7F1a1670819833240f027b25EfF")

var (
	rfqOrderTypes = apitypes.Types{
		"RfqOrder": {
			{Name: "makerToken", Type: "address"},
			{Name: "takerToken", Type: "address"},
			{Name: "makerAmount", Type: "uint128"},
			{Name: "takerAmount", Type: "uint128"},
			{Name: "maker", Type: "address"},
			{Name: "taker", Type: "address"},
			{Name: "txOrigin", Type: "address"},
			{Name: "pool", Type: "bytes32"},
			{Name: "expiry", Type: "uint64"},
			{Name: "salt", Type: "uint256"},
		},
	}
	limitOrderTypes = apitypes.Types{
		"LimitOrder": {
			{Name: "makerToken", Type: "address"},
			{Name: "takerToken", Type: "address"},
			{Name: "makerAmount", Type: "uint128"},
			{Name: "takerAmount", Type: "uint128"},
			{Name: "takerTokenFeeAmount", Type: "uint128"},
			{Name: "maker", Type: "address"},
			{Name: "taker", Type: "address"},
			{Name: "sender", Type: "address"},
			{Name: "feeRecipient", Type: "address"},
			{Name: "pool", Type: "bytes32"},
			{Name: "expiry", Type: "uint64"},
			{Name: "salt", Type: "uint256"},
		},
	}
)

// RfqOrder is a 0x RFQ order. TxOrigin must be the account that sends the fill transaction.
type RfqOrder struct {
	MakerToken  common.Address
	TakerToken  common.Address
	MakerAmount *big.Int
	TakerAmount *big.Int
	Maker       common.Address
	Taker       common.Address
	TxOrigin    common.Address
	Pool        [32]byte
	Expiry      uint64
	Salt        *big.Int

	ChainID *big.Int
	Proxy   common.Address
}

// NewRfqOrder validates o and fills in protocol defaults. A zero Taker lets anyone fill.
func NewRfqOrder(o RfqOrder) (*RfqOrder, error) {
	err := orders.Require("0x rfq").
		Address("maker", o.Maker).
		Address("makerToken", o.MakerToken).
		Address("takerToken", o.TakerToken).
		Address("txOrigin", o.TxOrigin).
		Amount("makerAmount", o.MakerAmount).
		Amount("takerAmount", o.TakerAmount).
		Bits("makerAmount", o.MakerAmount, amountBits).
		Bits("takerAmount", o.TakerAmount, amountBits).
		Err()
	if err != nil {
		return nil, err
	}
	if o.Expiry == 0 {
		return nil, orders.Require("0x rfq").Amount("expiry", nil).Err()
	}
	o.Salt = orders.OrZero(o.Salt)
	if o.Proxy == (common.Address{}) {
		o.Proxy = ExchangeProxy
	}
	return &o, nil
}

// TypedData returns the EIP-712 payload the maker signs
func (o *RfqOrder) TypedData() apitypes.TypedData {
	return orders.NewTypedData(
		orders.Domain(DomainName, DomainVersion, o.ChainID, o.Proxy),
		"RfqOrder",
		rfqOrderTypes,
		apitypes.TypedDataMessage{
			"makerToken":  orders.Addr(o.MakerToken),
			"takerToken":  orders.Addr(o.TakerToken),
			"makerAmount": o.MakerAmount,
			"takerAmount": o.TakerAmount,
			"maker":       orders.Addr(o.Maker),
			"taker":       orders.Addr(o.Taker),
			"txOrigin":    orders.Addr(o.TxOrigin),
			"pool":        orders.Bytes32(o.Pool),
			"expiry":      orders.Uint(o.Expiry),
			"salt":        o.Salt,
		},
	)
}

// Sign has the maker sign the order
func (o *RfqOrder) Sign(ctx context.Context, signer orders.TypedDataSigner) (calldata.ZeroExSignature, error) {
	return sign(ctx, signer, o.Maker, o.TypedData())
}

// ABIOrder returns the order tuple fillRfqOrder takes
func (o *RfqOrder) ABIOrder() calldata.ZeroExRfqOrder {
	return calldata.ZeroExRfqOrder{
		MakerToken:  o.MakerToken,
		TakerToken:  o.TakerToken,
		MakerAmount: o.MakerAmount,
		TakerAmount: o.TakerAmount,
		Maker:       o.Maker,
		Taker:       o.Taker,
		TxOrigin:    o.TxOrigin,
		Pool:        o.Pool,
		Expiry:      o.Expiry,
		Salt:        o.Salt,
	}
}

// FillCalldata encodes a fill of the whole taker amount
func (o *RfqOrder) FillCalldata(sig calldata.ZeroExSignature) ([]byte, error) {
	return calldata.FillRfqOrder(o.ABIOrder(), sig, o.TakerAmount)
}

// LimitOrder is a 0x limit order. Fills pay the protocol fee in ETH.
type LimitOrder struct {
	MakerToken          common.Address
	TakerToken          common.Address
	MakerAmount         *big.Int
	TakerAmount         *big.Int
	TakerTokenFeeAmount *big.Int
	Maker               common.Address
	Taker               common.Address
	Sender              common.Address
	FeeRecipient        common.Address
	Pool                [32]byte
	Expiry              uint64
	Salt                *big.Int

	ChainID *big.Int
	Proxy   common.Address
}

// NewLimitOrder validates o and fills in protocol defaults. Fee fields default to zero.
func NewLimitOrder(o LimitOrder) (*LimitOrder, error) {
	err := orders.Require("0x limit").
		Address("maker", o.Maker).
		Address("makerToken", o.MakerToken).
		Address("takerToken", o.TakerToken).
		Amount("makerAmount", o.MakerAmount).
		Amount("takerAmount", o.TakerAmount).
		Bits("makerAmount", o.MakerAmount, amountBits).
		Bits("takerAmount", o.TakerAmount, amountBits).
		Bits("takerTokenFeeAmount", o.TakerTokenFeeAmount, amountBits).
		Err()
	if err != nil {
		return nil, err
	}
	if o.Expiry == 0 {
		return nil, orders.Require("0x limit").Amount("expiry", nil).Err()
	}
	o.TakerTokenFeeAmount = orders.OrZero(o.TakerTokenFeeAmount)
	o.Salt = orders.OrZero(o.Salt)
	if o.Proxy == (common.Address{}) {
		o.Proxy = ExchangeProxy
	}
	return &o, nil
}

// TypedData returns the EIP-712 payload the maker signs
func (o *LimitOrder) TypedData() apitypes.TypedData {
	return orders.NewTypedData(
		orders.Domain(DomainName, DomainVersion, o.ChainID, o.Proxy),
		"LimitOrder",
		limitOrderTypes,
		apitypes.TypedDataMessage{
			"makerToken":          orders.Addr(o.MakerToken),
			"takerToken":          orders.Addr(o.TakerToken),
			"makerAmount":         o.MakerAmount,
			"takerAmount":         o.TakerAmount,
			"takerTokenFeeAmount": o.TakerTokenFeeAmount,
			"maker":               orders.Addr(o.Maker),
			"taker":               orders.Addr(o.Taker),
			"sender":              orders.Addr(o.Sender),
			"feeRecipient":        orders.Addr(o.FeeRecipient),
			"pool":                orders.Bytes32(o.Pool),
			"expiry":              orders.Uint(o.Expiry),
			"salt":                o.Salt,
		},
	)
}

// Sign has the maker sign the order
func (o *LimitOrder) Sign(ctx context.Context, signer orders.TypedDataSigner) (calldata.ZeroExSignature, error) {
	return sign(ctx, signer, o.Maker, o.TypedData())
}

// ABIOrder returns the order tuple fillLimitOrder takes
func (o *LimitOrder) ABIOrder() calldata.ZeroExLimitOrder {
	return calldata.ZeroExLimitOrder{
		MakerToken:          o.MakerToken,
		TakerToken:          o.TakerToken,
		MakerAmount:         o.MakerAmount,
		TakerAmount:         o.TakerAmount,
		TakerTokenFeeAmount: o.TakerTokenFeeAmount,
		Maker:               o.Maker,
		Taker:               o.Taker,
		Sender:              o.Sender,
		FeeRecipient:        o.FeeRecipient,
		Pool:                o.Pool,
		Expiry:              o.Expiry,
		Salt:                o.Salt,
	}
}

// FillCalldata encodes a fill of the whole taker amount
func (o *LimitOrder) FillCalldata(sig calldata.ZeroExSignature) ([]byte, error) {
	return calldata.FillLimitOrder(o.ABIOrder(), sig, o.TakerAmount)
}

func sign(ctx context.Context, signer orders.TypedDataSigner, maker common.Address, data apitypes.TypedData) (calldata.ZeroExSignature, error) {
	raw, err := orders.SignAs(ctx, signer, maker, data)
	if err != nil {
		return calldata.ZeroExSignature{}, err
	}
	rsv, err := orders.SplitRSV(raw)
	if err != nil {
		return calldata.ZeroExSignature{}, err
	}
	return calldata.ZeroExSignature{
		SignatureType: SignatureTypeEIP712,
		V:             rsv.V,
		R:             rsv.R,
		S:             rsv.S,
	}, nil
}
