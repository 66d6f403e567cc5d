package oneinch

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// MakerTraits bit layout
const (
	noPartialFillsFlag        = 255
	allowMultipleFillsFlag    = 254
	preInteractionCallFlag    = 252
	postInteractionCallFlag   = 251
	needCheckEpochManagerFlag = 250
	hasExtensionFlag          = 249
	usePermit2Flag            = 248
	unwrapWETHFlag            = 247

	allowedSenderBits = 80
	expirationOffset  = 80
	nonceOffset       = 120
	seriesOffset      = 160
	uint40Bits        = 40
)

// MakerTraits are the packed order options the maker signs
type MakerTraits struct {
	// AllowedSender restricts the taker; only its low 80 bits are stored. Zero allows anyone.
	AllowedSender common.Address
	// Expiration is a unix timestamp, 0 for none
	Expiration uint64
	// Nonce is the bit invalidator slot, or the epoch when the epoch manager is checked
	Nonce  uint64
	Series uint64

	NoPartialFills        bool
	AllowMultipleFills    bool
	PreInteraction        bool
	PostInteraction       bool
	NeedCheckEpochManager bool
	HasExtension          bool
	UsePermit2            bool
	UnwrapWETH            bool
}

// Encode packs the traits into their uint256 form
func (t MakerTraits) Encode() (*big.Int, error) {
	for _, f := range []struct {
		name  string
		value uint64
	}{{"expiration", t.Expiration}, {"nonce", t.Nonce}, {"series", t.Series}} {
		if f.value >= 1<<uint40Bits {
			return nil, fmt.Errorf("%w: maker traits %s %d does not fit in uint40", domain.ErrInvalidAmount, f.name, f.value)
		}
	}

	out := new(big.Int).SetBytes(t.AllowedSender.Bytes()[common.AddressLength-allowedSenderBits/8:])
	out.Or(out, new(big.Int).Lsh(new(big.Int).SetUint64(t.Expiration), expirationOffset))
	out.Or(out, new(big.Int).Lsh(new(big.Int).SetUint64(t.Nonce), nonceOffset))
	out.Or(out, new(big.Int).Lsh(new(big.Int).SetUint64(t.Series), seriesOffset))

	setFlag(out, noPartialFillsFlag, t.NoPartialFills)
	setFlag(out, allowMultipleFillsFlag, t.AllowMultipleFills)
	setFlag(out, preInteractionCallFlag, t.PreInteraction)
	setFlag(out, postInteractionCallFlag, t.PostInteraction)
	setFlag(out, needCheckEpochManagerFlag, t.NeedCheckEpochManager)
	setFlag(out, hasExtensionFlag, t.HasExtension)
	setFlag(out, usePermit2Flag, t.UsePermit2)
	setFlag(out, unwrapWETHFlag, t.UnwrapWETH)
	return out, nil
}

// DecodeMakerTraits unpacks a uint256 maker traits value. AllowedSender holds only the stored low 80 bits.
func DecodeMakerTraits(v *big.Int) MakerTraits {
	var sender common.Address
	low := bits(v, 0, allowedSenderBits).Bytes()
	copy(sender[common.AddressLength-len(low):], low)

	return MakerTraits{
		AllowedSender:         sender,
		Expiration:            bits(v, expirationOffset, uint40Bits).Uint64(),
		Nonce:                 bits(v, nonceOffset, uint40Bits).Uint64(),
		Series:                bits(v, seriesOffset, uint40Bits).Uint64(),
		NoPartialFills:        v.Bit(noPartialFillsFlag) == 1,
		AllowMultipleFills:    v.Bit(allowMultipleFillsFlag) == 1,
		PreInteraction:        v.Bit(preInteractionCallFlag) == 1,
		PostInteraction:       v.Bit(postInteractionCallFlag) == 1,
		NeedCheckEpochManager: v.Bit(needCheckEpochManagerFlag) == 1,
		HasExtension:          v.Bit(hasExtensionFlag) == 1,
		UsePermit2:            v.Bit(usePermit2Flag) == 1,
		UnwrapWETH:            v.Bit(unwrapWETHFlag) == 1,
	}
}

// TakerTraits bit layout
const (
	makerAmountFlag     = 255
	takerUnwrapWETHFlag = 254
	skipOrderPermitFlag = 253
	takerUsePermit2Flag = 252
	argsHasTargetFlag   = 251

	extensionLengthOffset   = 224
	interactionLengthOffset = 200
	lengthBits              = 24
	thresholdBits           = 185
)

// TakerTraits are the packed fill options the taker passes to fillOrder
type TakerTraits struct {
	// MakerAmount makes the fill amount a making amount; Threshold is then the maximum taking amount.
	// Otherwise the amount is a taking amount and Threshold the minimum making amount.
	MakerAmount     bool
	UnwrapWETH      bool
	SkipOrderPermit bool
	UsePermit2      bool
	ArgsHasTarget   bool

	ExtensionLength   uint32
	InteractionLength uint32
	Threshold         *big.Int
}

// Encode packs the traits into their uint256 form
func (t TakerTraits) Encode() (*big.Int, error) {
	if t.ExtensionLength >= 1<<lengthBits || t.InteractionLength >= 1<<lengthBits {
		return nil, fmt.Errorf("%w: taker traits args length does not fit in uint24", domain.ErrInvalidAmount)
	}
	out := new(big.Int)
	if t.Threshold != nil {
		if t.Threshold.Sign() < 0 || t.Threshold.BitLen() > thresholdBits {
			return nil, fmt.Errorf("%w: taker traits threshold %s does not fit in %d bits", domain.ErrInvalidAmount, t.Threshold, thresholdBits)
		}
		out.Set(t.Threshold)
	}
	out.Or(out, new(big.Int).Lsh(big.NewInt(int64(t.InteractionLength)), interactionLengthOffset))
	out.Or(out, new(big.Int).Lsh(big.NewInt(int64(t.ExtensionLength)), extensionLengthOffset))

	setFlag(out, makerAmountFlag, t.MakerAmount)
	setFlag(out, takerUnwrapWETHFlag, t.UnwrapWETH)
	setFlag(out, skipOrderPermitFlag, t.SkipOrderPermit)
	setFlag(out, takerUsePermit2Flag, t.UsePermit2)
	setFlag(out, argsHasTargetFlag, t.ArgsHasTarget)
	return out, nil
}

// DecodeTakerTraits unpacks a uint256 taker traits value
func DecodeTakerTraits(v *big.Int) TakerTraits {
	return TakerTraits{
		MakerAmount:       v.Bit(makerAmountFlag) == 1,
		UnwrapWETH:        v.Bit(takerUnwrapWETHFlag) == 1,
		SkipOrderPermit:   v.Bit(skipOrderPermitFlag) == 1,
		UsePermit2:        v.Bit(takerUsePermit2Flag) == 1,
		ArgsHasTarget:     v.Bit(argsHasTargetFlag) == 1,
		ExtensionLength:   uint32(bits(v, extensionLengthOffset, lengthBits).Uint64()),
		InteractionLength: uint32(bits(v, interactionLengthOffset, lengthBits).Uint64()),
		Threshold:         bits(v, 0, thresholdBits),
	}
}

func setFlag(v *big.Int, bit int, on bool) {
	if on {
		v.SetBit(v, bit, 1)
	}
}

// bits extracts width bits of v starting at offset
func bits(v *big.Int, offset, width uint) *big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), width), big.NewInt(1))
	return mask.And(mask, new(big.Int).Rsh(v, offset))
}
