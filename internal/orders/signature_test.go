package orders

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

func rawSig(v byte) []byte {
	sig := make([]byte, 65)
	for i := 0; i < 32; i++ {
		sig[i] = 0x11
		sig[32+i] = 0x22
	}
	sig[64] = v
	return sig
}

func TestNormalizeV(t *testing.T) {
	for _, tc := range []struct{ in, want byte }{{0, 27}, {1, 28}, {27, 27}, {28, 28}} {
		out, err := NormalizeV(rawSig(tc.in))
		require.NoError(t, err)
		assert.Equal(t, tc.want, out[64])
	}

	_, err := NormalizeV(rawSig(5))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = NormalizeV(make([]byte, 64))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestNormalizeV_DoesNotMutateInput(t *testing.T) {
	sig := rawSig(1)
	_, err := NormalizeV(sig)
	require.NoError(t, err)
	assert.Equal(t, byte(1), sig[64])
}

func TestSplitRSV(t *testing.T) {
	rsv, err := SplitRSV(rawSig(0))
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), rsv.R[0])
	assert.Equal(t, byte(0x22), rsv.S[31])
	assert.Equal(t, uint8(27), rsv.V)
	assert.True(t, bytes.Equal(rawSig(27), rsv.Bytes()))
}

func TestSplitCompact(t *testing.T) {
	tests := []struct {
		name    string
		v       byte
		topBit  bool
		expandV uint8
	}{
		{"even parity", 27, false, 27},
		{"odd parity", 28, true, 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compact, err := SplitCompact(rawSig(tt.v))
			require.NoError(t, err)
			assert.Len(t, compact.R, 32)
			assert.Len(t, compact.VS, 32)
			assert.Equal(t, tt.topBit, compact.VS[0]&0x80 != 0)

			expanded := compact.Expand()
			assert.Equal(t, tt.expandV, expanded.V)
			assert.Equal(t, byte(0x22), expanded.S[0])
		})
	}
}

func TestSplitCompact_HighS(t *testing.T) {
	sig := rawSig(27)
	sig[32] = 0x80
	_, err := SplitCompact(sig)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}
