package calldata

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/trebuchet-org/gasbench/internal/domain"
)

var hundred = big.NewInt(100)

// PercentageOf returns floor(amount * pct / 100). pct must be within [0, 100].
func PercentageOf(amount *big.Int, pct uint64) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: amount must be non-negative", domain.ErrInvalidAmount)
	}
	if pct > 100 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidPercentage, pct)
	}
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(pct))
	return out.Quo(out, hundred), nil
}

// ApplySlippage returns the minimum acceptable output for amount with slippagePct tolerance
func ApplySlippage(amount *big.Int, slippagePct uint64) (*big.Int, error) {
	if slippagePct > 100 {
		return nil, fmt.Errorf("%w: slippage %d", domain.ErrInvalidPercentage, slippagePct)
	}
	return PercentageOf(amount, 100-slippagePct)
}

// ParseUnits converts a decimal string such as "0.1" into base units with the given decimals
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", "")
	if value == "" {
		return nil, fmt.Errorf("%w: empty amount", domain.ErrInvalidAmount)
	}
	if strings.HasPrefix(value, "-") {
		return nil, fmt.Errorf("%w: %s is negative", domain.ErrInvalidAmount, value)
	}

	whole, frac, _ := strings.Cut(value, ".")
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %s has more than %d decimals", domain.ErrInvalidAmount, value, decimals)
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	out, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal number", domain.ErrInvalidAmount, value)
	}
	return out, nil
}

// FormatUnits renders base units as a decimal string, trimming trailing zeros
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	s := new(big.Int).Abs(amount).String()
	if len(s) <= int(decimals) {
		s = strings.Repeat("0", int(decimals)-len(s)+1) + s
	}
	whole, frac := s[:len(s)-int(decimals)], strings.TrimRight(s[len(s)-int(decimals):], "0")
	if amount.Sign() < 0 {
		whole = "-" + whole
	}
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
