// Package oneinch builds 1inch Limit Order Protocol v4 orders, filled through AggregationRouterV6.
package oneinch

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/orders"
)

const (
	DomainName    = "1inch Aggregation Router"
	DomainVersion = "6"
	orderName     = "1inch limit"
)

// AggregationRouterV6 is the mainnet router that embeds the limit order protocol
var AggregationRouterV6 = common.HexToAddress("0x111111125421cA6dc452d289314280a0f8842A65")

var orderTypes = apitypes.Types{
	"Order": {
		{Name: "salt", Type: "uint256"},
		{Name: "maker", Type: "address"},
		{Name: "receiver", Type: "address"},
		{Name: "makerAsset", Type: "address"},
		{Name: "takerAsset", Type: "address"},
		{Name: "makingAmount", Type: "uint256"},
		{Name: "takingAmount", Type: "uint256"},
		{Name: "makerTraits", Type: "uint256"},
	},
}

// Params describe a limit order. Receiver, Salt, Traits, ChainID and Router are optional.
type Params struct {
	Maker        common.Address
	Receiver     common.Address
	MakerAsset   common.Address
	TakerAsset   common.Address
	MakingAmount *big.Int
	TakingAmount *big.Int
	Salt         *big.Int
	Traits       MakerTraits
	ChainID      *big.Int
	Router       common.Address
}

// LimitOrder is a validated order ready to be signed and filled
type LimitOrder struct {
	Salt         *big.Int
	Maker        common.Address
	Receiver     common.Address
	MakerAsset   common.Address
	TakerAsset   common.Address
	MakingAmount *big.Int
	TakingAmount *big.Int
	MakerTraits  *big.Int

	chainID *big.Int
	router  common.Address
}

// NewLimitOrder validates p and fills in protocol defaults
func NewLimitOrder(p Params) (*LimitOrder, error) {
	err := orders.Require(orderName).
		Address("maker", p.Maker).
		Address("makerAsset", p.MakerAsset).
		Address("takerAsset", p.TakerAsset).
		Amount("makingAmount", p.MakingAmount).
		Amount("takingAmount", p.TakingAmount).
		Err()
	if err != nil {
		return nil, err
	}

	traits, err := p.Traits.Encode()
	if err != nil {
		return nil, err
	}

	o := &LimitOrder{
		Maker:        p.Maker,
		Receiver:     p.Receiver,
		MakerAsset:   p.MakerAsset,
		TakerAsset:   p.TakerAsset,
		MakingAmount: new(big.Int).Set(p.MakingAmount),
		TakingAmount: new(big.Int).Set(p.TakingAmount),
		MakerTraits:  traits,
		chainID:      p.ChainID,
		router:       p.Router,
	}
	if o.router == (common.Address{}) {
		o.router = AggregationRouterV6
	}
	if p.Salt != nil {
		o.Salt = new(big.Int).Set(p.Salt)
	} else {
		o.Salt = o.defaultSalt()
	}
	return o, nil
}

// defaultSalt derives a salt from the order fields. The low 160 bits stay zero since
// they carry the extension hash when an extension is attached.
func (o *LimitOrder) defaultSalt() *big.Int {
	h := crypto.Keccak256(
		o.Maker.Bytes(), o.MakerAsset.Bytes(), o.TakerAsset.Bytes(),
		common.BigToHash(o.MakingAmount).Bytes(), common.BigToHash(o.TakingAmount).Bytes(),
		common.BigToHash(o.MakerTraits).Bytes(),
	)
	salt := new(big.Int).SetBytes(h[:12])
	return salt.Lsh(salt, 160)
}

// TypedData returns the EIP-712 payload the maker signs
func (o *LimitOrder) TypedData() apitypes.TypedData {
	return orders.NewTypedData(
		orders.Domain(DomainName, DomainVersion, o.chainID, o.router),
		"Order",
		orderTypes,
		apitypes.TypedDataMessage{
			"salt":         o.Salt,
			"maker":        orders.Addr(o.Maker),
			"receiver":     orders.Addr(o.Receiver),
			"makerAsset":   orders.Addr(o.MakerAsset),
			"takerAsset":   orders.Addr(o.TakerAsset),
			"makingAmount": o.MakingAmount,
			"takingAmount": o.TakingAmount,
			"makerTraits":  o.MakerTraits,
		},
	)
}

// Hash returns the order hash the router emits on fill
func (o *LimitOrder) Hash() (common.Hash, error) {
	return orders.Hash(o.TypedData())
}

// Sign has the maker sign the order and returns the compact r/vs form fillOrder takes
func (o *LimitOrder) Sign(ctx context.Context, signer orders.TypedDataSigner) (orders.Compact, error) {
	sig, err := orders.SignAs(ctx, signer, o.Maker, o.TypedData())
	if err != nil {
		return orders.Compact{}, err
	}
	return orders.SplitCompact(sig)
}

// ABIOrder returns the order as fillOrder encodes it, with addresses widened to uint256
func (o *LimitOrder) ABIOrder() calldata.OneInchOrder {
	return calldata.OneInchOrder{
		Salt:         o.Salt,
		Maker:        addressWord(o.Maker),
		Receiver:     addressWord(o.Receiver),
		MakerAsset:   addressWord(o.MakerAsset),
		TakerAsset:   addressWord(o.TakerAsset),
		MakingAmount: o.MakingAmount,
		TakingAmount: o.TakingAmount,
		MakerTraits:  o.MakerTraits,
	}
}

// FillCalldata encodes a fill of the whole making amount, paying at most the taking amount
func (o *LimitOrder) FillCalldata(sig orders.Compact) ([]byte, error) {
	traits, err := TakerTraits{MakerAmount: true, Threshold: o.TakingAmount}.Encode()
	if err != nil {
		return nil, err
	}
	return calldata.FillOrder(o.ABIOrder(), sig.R, sig.VS, o.MakingAmount, traits)
}

func addressWord(a common.Address) *big.Int {
	return new(big.Int).SetBytes(a.Bytes())
}
