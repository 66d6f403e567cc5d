package orders

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// Check collects the first failed requirement of an order
type Check struct {
	order string
	err   error
}

// Require starts validating the named order type
func Require(order string) *Check {
	return &Check{order: order}
}

// Address requires a non-zero address
func (c *Check) Address(field string, a common.Address) *Check {
	if c.err == nil && a == (common.Address{}) {
		c.err = &domain.MissingFieldError{Order: c.order, Field: field}
	}
	return c
}

// Amount requires a positive amount
func (c *Check) Amount(field string, v *big.Int) *Check {
	if c.err == nil && (v == nil || v.Sign() <= 0) {
		c.err = &domain.MissingFieldError{Order: c.order, Field: field}
	}
	return c
}

// Bits requires a non-nil v to fit in an unsigned integer of the given width
func (c *Check) Bits(field string, v *big.Int, bits int) *Check {
	if c.err == nil && v != nil && (v.Sign() < 0 || v.BitLen() > bits) {
		c.err = fmt.Errorf("%w: %s order: %s does not fit in uint%d", domain.ErrInvalidAmount, c.order, field, bits)
	}
	return c
}

func (c *Check) Err() error {
	return c.err
}

// OrZero returns v, or a fresh zero when v is nil
func OrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
