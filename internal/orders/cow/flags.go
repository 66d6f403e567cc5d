package cow

import (
	"fmt"
	"math/big"

	"github.com/trebuchet-org/gasbench/internal/domain"
)

// OrderKind is whether the sell or the buy amount is exact
type OrderKind string

const (
	KindSell OrderKind = "sell"
	KindBuy  OrderKind = "buy"
)

// TokenBalance is where an order's tokens are taken from or paid to
type TokenBalance string

const (
	BalanceERC20    TokenBalance = "erc20"
	BalanceExternal TokenBalance = "external"
	BalanceInternal TokenBalance = "internal"
)

// SigningScheme is how the settlement contract verifies the trade signature
type SigningScheme string

const (
	SchemeEIP712  SigningScheme = "eip712"
	SchemeEthSign SigningScheme = "ethsign"
	SchemeEIP1271 SigningScheme = "eip1271"
	SchemePreSign SigningScheme = "presign"
)

// Trade flag bit layout
const (
	kindMask              = 0x01
	partiallyFillableMask = 0x02
	sellBalanceMask       = 0x0c
	buyBalanceMask        = 0x10
	schemeMask            = 0x60
	allFlagsMask          = kindMask | partiallyFillableMask | sellBalanceMask | buyBalanceMask | schemeMask
)

var (
	kindBits = map[OrderKind]uint64{
		KindSell: 0x00,
		KindBuy:  0x01,
	}
	sellBalanceBits = map[TokenBalance]uint64{
		BalanceERC20:    0x00,
		BalanceExternal: 0x08,
		BalanceInternal: 0x0c,
	}
	buyBalanceBits = map[TokenBalance]uint64{
		BalanceERC20:    0x00,
		BalanceInternal: 0x10,
	}
	schemeBits = map[SigningScheme]uint64{
		SchemeEIP712:  0x00,
		SchemeEthSign: 0x20,
		SchemeEIP1271: 0x40,
		SchemePreSign: 0x60,
	}
)

// TradeFlags are the order options GPv2Settlement reads from a trade's flags word
type TradeFlags struct {
	Kind              OrderKind
	PartiallyFillable bool
	SellTokenBalance  TokenBalance
	BuyTokenBalance   TokenBalance
	SigningScheme     SigningScheme
}

// EncodeTradeFlags packs flags. Every value must be one of the named constants.
func EncodeTradeFlags(f TradeFlags) (*big.Int, error) {
	kind, ok := kindBits[f.Kind]
	if !ok {
		return nil, &domain.UnknownFlagError{Flag: "order kind", Value: string(f.Kind)}
	}
	sell, ok := sellBalanceBits[f.SellTokenBalance]
	if !ok {
		return nil, &domain.UnknownFlagError{Flag: "sell token balance", Value: string(f.SellTokenBalance)}
	}
	buy, ok := buyBalanceBits[f.BuyTokenBalance]
	if !ok {
		return nil, &domain.UnknownFlagError{Flag: "buy token balance", Value: string(f.BuyTokenBalance)}
	}
	scheme, ok := schemeBits[f.SigningScheme]
	if !ok {
		return nil, &domain.UnknownFlagError{Flag: "signing scheme", Value: string(f.SigningScheme)}
	}

	out := kind | sell | buy | scheme
	if f.PartiallyFillable {
		out |= partiallyFillableMask
	}
	return new(big.Int).SetUint64(out), nil
}

// DecodeTradeFlags inverts EncodeTradeFlags, rejecting bit patterns no constant maps to
func DecodeTradeFlags(v *big.Int) (TradeFlags, error) {
	if v == nil || v.Sign() < 0 || !v.IsUint64() || v.Uint64()&^allFlagsMask != 0 {
		return TradeFlags{}, &domain.UnknownFlagError{Flag: "trade flags", Value: fmt.Sprint(v)}
	}
	bits := v.Uint64()

	var (
		f  TradeFlags
		ok bool
	)
	f.PartiallyFillable = bits&partiallyFillableMask != 0
	if f.Kind, ok = lookup(kindBits, bits&kindMask); !ok {
		return TradeFlags{}, &domain.UnknownFlagError{Flag: "order kind", Value: fmt.Sprintf("%#x", bits&kindMask)}
	}
	if f.SellTokenBalance, ok = lookup(sellBalanceBits, bits&sellBalanceMask); !ok {
		return TradeFlags{}, &domain.UnknownFlagError{Flag: "sell token balance", Value: fmt.Sprintf("%#x", bits&sellBalanceMask)}
	}
	if f.BuyTokenBalance, ok = lookup(buyBalanceBits, bits&buyBalanceMask); !ok {
		return TradeFlags{}, &domain.UnknownFlagError{Flag: "buy token balance", Value: fmt.Sprintf("%#x", bits&buyBalanceMask)}
	}
	if f.SigningScheme, ok = lookup(schemeBits, bits&schemeMask); !ok {
		return TradeFlags{}, &domain.UnknownFlagError{Flag: "signing scheme", Value: fmt.Sprintf("%#x", bits&schemeMask)}
	}
	return f, nil
}

func lookup[K comparable](table map[K]uint64, bits uint64) (K, bool) {
	for k, v := range table {
		if v == bits {
			return k, true
		}
	}
	var zero K
	return zero, false
}
