package orders

import (
	"fmt"

	"github.com/trebuchet-org/gasbench/internal/domain"
)

const signatureLength = 65

// RSV is a signature split into its components with v in {27, 28}
type RSV struct {
	R [32]byte
	S [32]byte
	V uint8
}

// Bytes joins the components back into r || s || v
func (s RSV) Bytes() []byte {
	out := make([]byte, 0, signatureLength)
	out = append(out, s.R[:]...)
	out = append(out, s.S[:]...)
	return append(out, s.V)
}

// Compact is the EIP-2098 form: the parity of v is stored in the top bit of s
type Compact struct {
	R  [32]byte
	VS [32]byte
}

// Expand recovers the 65 byte form
func (c Compact) Expand() RSV {
	out := RSV{R: c.R, S: c.VS, V: 27}
	if c.VS[0]&0x80 != 0 {
		out.V = 28
	}
	out.S[0] &= 0x7f
	return out
}

// NormalizeV checks the signature length and rewrites a 0/1 recovery id to 27/28
func NormalizeV(sig []byte) ([]byte, error) {
	if len(sig) != signatureLength {
		return nil, fmt.Errorf("%w: length %d, want %d", domain.ErrInvalidSignature, len(sig), signatureLength)
	}
	out := append([]byte{}, sig...)
	switch out[64] {
	case 0, 1:
		out[64] += 27
	case 27, 28:
	default:
		return nil, fmt.Errorf("%w: v = %d", domain.ErrInvalidSignature, out[64])
	}
	return out, nil
}

// SplitRSV splits a 65 byte signature
func SplitRSV(sig []byte) (RSV, error) {
	norm, err := NormalizeV(sig)
	if err != nil {
		return RSV{}, err
	}
	var out RSV
	copy(out.R[:], norm[:32])
	copy(out.S[:], norm[32:64])
	out.V = norm[64]
	return out, nil
}

// SplitCompact splits a 65 byte signature into r and vs
func SplitCompact(sig []byte) (Compact, error) {
	rsv, err := SplitRSV(sig)
	if err != nil {
		return Compact{}, err
	}
	if rsv.S[0]&0x80 != 0 {
		// high-s signatures have no compact form
		return Compact{}, fmt.Errorf("%w: s is not in the lower half order", domain.ErrInvalidSignature)
	}
	out := Compact{R: rsv.R, VS: rsv.S}
	if rsv.V == 28 {
		out.VS[0] |= 0x80
	}
	return out, nil
}
