package cow

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

func TestEncodeTradeFlags_Table(t *testing.T) {
	tests := []struct {
		name  string
		flags TradeFlags
		want  uint64
	}{
		{"default sell", TradeFlags{KindSell, false, BalanceERC20, BalanceERC20, SchemeEIP712}, 0x00},
		{"buy", TradeFlags{KindBuy, false, BalanceERC20, BalanceERC20, SchemeEIP712}, 0x01},
		{"partially fillable", TradeFlags{KindSell, true, BalanceERC20, BalanceERC20, SchemeEIP712}, 0x02},
		{"external sell balance", TradeFlags{KindSell, false, BalanceExternal, BalanceERC20, SchemeEIP712}, 0x08},
		{"internal sell balance", TradeFlags{KindSell, false, BalanceInternal, BalanceERC20, SchemeEIP712}, 0x0c},
		{"internal buy balance", TradeFlags{KindSell, false, BalanceERC20, BalanceInternal, SchemeEIP712}, 0x10},
		{"ethsign", TradeFlags{KindSell, false, BalanceERC20, BalanceERC20, SchemeEthSign}, 0x20},
		{"eip1271", TradeFlags{KindSell, false, BalanceERC20, BalanceERC20, SchemeEIP1271}, 0x40},
		{"presign", TradeFlags{KindSell, false, BalanceERC20, BalanceERC20, SchemePreSign}, 0x60},
		{"everything", TradeFlags{KindBuy, true, BalanceInternal, BalanceInternal, SchemePreSign}, 0x7f},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := EncodeTradeFlags(tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Uint64())

			decoded, err := DecodeTradeFlags(v)
			require.NoError(t, err)
			assert.Equal(t, tt.flags, decoded)
		})
	}
}

func TestEncodeTradeFlags_Unknown(t *testing.T) {
	tests := []struct {
		name  string
		flags TradeFlags
	}{
		{"kind", TradeFlags{"limit", false, BalanceERC20, BalanceERC20, SchemeEIP712}},
		{"empty kind", TradeFlags{"", false, BalanceERC20, BalanceERC20, SchemeEIP712}},
		{"sell balance", TradeFlags{KindSell, false, "vault", BalanceERC20, SchemeEIP712}},
		{"external buy balance", TradeFlags{KindSell, false, BalanceERC20, BalanceExternal, SchemeEIP712}},
		{"scheme", TradeFlags{KindSell, false, BalanceERC20, BalanceERC20, "eip191"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeTradeFlags(tt.flags)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUnknownFlag)
		})
	}
}

func TestDecodeTradeFlags_Unknown(t *testing.T) {
	for _, v := range []int64{0x04, 0x80, 0x100} {
		_, err := DecodeTradeFlags(big.NewInt(v))
		assert.ErrorIs(t, err, domain.ErrUnknownFlag, "flags %#x", v)
	}
	_, err := DecodeTradeFlags(nil)
	assert.ErrorIs(t, err, domain.ErrUnknownFlag)
}
