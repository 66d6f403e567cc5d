package uniswapx

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/orders"
)

// DutchInput is the token the swapper sells. Its amount can only decay upwards.
type DutchInput struct {
	Token       common.Address
	StartAmount *big.Int
	EndAmount   *big.Int
}

// NewDutchInput validates an input with startAmount <= endAmount. Equal amounts give a fixed price.
func NewDutchInput(token common.Address, startAmount, endAmount *big.Int) (DutchInput, error) {
	err := orders.Require("uniswapx input").
		Address("token", token).
		Amount("startAmount", startAmount).
		Amount("endAmount", endAmount).
		Err()
	if err != nil {
		return DutchInput{}, err
	}
	if startAmount.Cmp(endAmount) > 0 {
		return DutchInput{}, fmt.Errorf("%w: input start amount %s exceeds end amount %s", domain.ErrInvalidAmount, startAmount, endAmount)
	}
	return DutchInput{Token: token, StartAmount: startAmount, EndAmount: endAmount}, nil
}

// DutchOutput is a token paid to recipient. Its amount can only decay downwards.
type DutchOutput struct {
	Token       common.Address
	StartAmount *big.Int
	EndAmount   *big.Int
	Recipient   common.Address
}

// NewDutchOutput validates an output with startAmount >= endAmount
func NewDutchOutput(token common.Address, startAmount, endAmount *big.Int, recipient common.Address) (DutchOutput, error) {
	err := orders.Require("uniswapx output").
		Address("token", token).
		Address("recipient", recipient).
		Amount("startAmount", startAmount).
		Amount("endAmount", endAmount).
		Err()
	if err != nil {
		return DutchOutput{}, err
	}
	if startAmount.Cmp(endAmount) < 0 {
		return DutchOutput{}, fmt.Errorf("%w: output start amount %s is below end amount %s", domain.ErrInvalidAmount, startAmount, endAmount)
	}
	return DutchOutput{Token: token, StartAmount: startAmount, EndAmount: endAmount, Recipient: recipient}, nil
}

// OrderInfo is the part of every reactor order that identifies the swapper and bounds its validity
type OrderInfo struct {
	Reactor                      common.Address
	Swapper                      common.Address
	Nonce                        *big.Int
	Deadline                     uint64
	AdditionalValidationContract common.Address
	AdditionalValidationData     []byte
}
