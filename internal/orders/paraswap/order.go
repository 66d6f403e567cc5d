// Package paraswap builds AugustusRFQ orders.
package paraswap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/orders"
)

const (
	DomainName    = "AUGUSTUS RFQ"
	DomainVersion = "1"
)

// AugustusRFQ is the mainnet RFQ settlement contract
var AugustusRFQ = common.HexToAddress("0xe92b586627ccA7a83dC919cc7127196d70f55a06")

var orderTypes = apitypes.Types{
	"Order": {
		{Name: "nonceAndMeta", Type: "uint256"},
		{Name: "expiry", Type: "uint128"},
		{Name: "makerAsset", Type: "address"},
		{Name: "takerAsset", Type: "address"},
		{Name: "maker", Type: "address"},
		{Name: "taker", Type: "address"},
		{Name: "makerAmount", Type: "uint256"},
		{Name: "takerAmount", Type: "uint256"},
	},
}

// Params describe an RFQ order. A zero Taker lets anyone fill; Expiry 0 never expires.
type Params struct {
	Nonce       *big.Int
	Expiry      uint64
	MakerAsset  common.Address
	TakerAsset  common.Address
	Maker       common.Address
	Taker       common.Address
	MakerAmount *big.Int
	TakerAmount *big.Int

	ChainID  *big.Int
	Contract common.Address
}

// Order is a validated AugustusRFQ order
type Order struct {
	NonceAndMeta *big.Int
	Expiry       *big.Int
	MakerAsset   common.Address
	TakerAsset   common.Address
	Maker        common.Address
	Taker        common.Address
	MakerAmount  *big.Int
	TakerAmount  *big.Int

	chainID  *big.Int
	contract common.Address
}

// NonceAndMeta packs the nonce above the 160 bit taker restriction
func NonceAndMeta(nonce *big.Int, taker common.Address) *big.Int {
	out := new(big.Int).Lsh(orders.OrZero(nonce), 160)
	return out.Or(out, new(big.Int).SetBytes(taker.Bytes()))
}

// NewOrder validates p and fills in protocol defaults
func NewOrder(p Params) (*Order, error) {
	err := orders.Require("paraswap rfq").
		Address("maker", p.Maker).
		Address("makerAsset", p.MakerAsset).
		Address("takerAsset", p.TakerAsset).
		Amount("makerAmount", p.MakerAmount).
		Amount("takerAmount", p.TakerAmount).
		Bits("nonce", p.Nonce, 96).
		Err()
	if err != nil {
		return nil, err
	}

	o := &Order{
		NonceAndMeta: NonceAndMeta(p.Nonce, p.Taker),
		Expiry:       new(big.Int).SetUint64(p.Expiry),
		MakerAsset:   p.MakerAsset,
		TakerAsset:   p.TakerAsset,
		Maker:        p.Maker,
		Taker:        p.Taker,
		MakerAmount:  new(big.Int).Set(p.MakerAmount),
		TakerAmount:  new(big.Int).Set(p.TakerAmount),
		chainID:      p.ChainID,
		contract:     p.Contract,
	}
	if o.contract == (common.Address{}) {
		o.contract = AugustusRFQ
	}
	return o, nil
}

// TypedData returns the EIP-712 payload the maker signs
func (o *Order) TypedData() apitypes.TypedData {
	return orders.NewTypedData(
		orders.Domain(DomainName, DomainVersion, o.chainID, o.contract),
		"Order",
		orderTypes,
		apitypes.TypedDataMessage{
			"nonceAndMeta": o.NonceAndMeta,
			"expiry":       o.Expiry,
			"makerAsset":   orders.Addr(o.MakerAsset),
			"takerAsset":   orders.Addr(o.TakerAsset),
			"maker":        orders.Addr(o.Maker),
			"taker":        orders.Addr(o.Taker),
			"makerAmount":  o.MakerAmount,
			"takerAmount":  o.TakerAmount,
		},
	)
}

// Sign has the maker sign the order. The contract splits the raw signature itself.
func (o *Order) Sign(ctx context.Context, signer orders.TypedDataSigner) ([]byte, error) {
	return orders.SignAs(ctx, signer, o.Maker, o.TypedData())
}

// ABIOrder returns the order tuple fillOrder takes
func (o *Order) ABIOrder() calldata.ParaswapOrder {
	return calldata.ParaswapOrder{
		NonceAndMeta: o.NonceAndMeta,
		Expiry:       o.Expiry,
		MakerAsset:   o.MakerAsset,
		TakerAsset:   o.TakerAsset,
		Maker:        o.Maker,
		Taker:        o.Taker,
		MakerAmount:  o.MakerAmount,
		TakerAmount:  o.TakerAmount,
	}
}

// FillCalldata encodes AugustusRFQ.fillOrder
func (o *Order) FillCalldata(sig []byte) ([]byte, error) {
	return calldata.AugustusFillOrder(o.ABIOrder(), sig)
}
