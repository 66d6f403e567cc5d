// Package uniswapx builds UniswapX exclusive dutch orders, signed as Permit2 witness transfers.
package uniswapx

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/orders"
)

// Permit2 signs with a versionless domain
const Permit2DomainName = "Permit2"

var (
	// ExclusiveDutchOrderReactor is the mainnet reactor for exclusive dutch orders
	ExclusiveDutchOrderReactor = common.HexToAddress("0x6000da47483062A0D734Ba3dc7576Ce6A0B645C4")
	// Permit2 is the canonical Permit2 deployment
	Permit2 = common.HexToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3")
)

var witnessTypes = apitypes.Types{
	"PermitWitnessTransferFrom": {
		{Name: "permitted", Type: "TokenPermissions"},
		{Name: "spender", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
		{Name: "witness", Type: "ExclusiveDutchOrder"},
	},
	"TokenPermissions": {
		{Name: "token", Type: "address"},
		{Name: "amount", Type: "uint256"},
	},
	"ExclusiveDutchOrder": {
		{Name: "info", Type: "OrderInfo"},
		{Name: "decayStartTime", Type: "uint256"},
		{Name: "decayEndTime", Type: "uint256"},
		{Name: "exclusiveFiller", Type: "address"},
		{Name: "exclusivityOverrideBps", Type: "uint256"},
		{Name: "inputToken", Type: "address"},
		{Name: "inputStartAmount", Type: "uint256"},
		{Name: "inputEndAmount", Type: "uint256"},
		{Name: "outputs", Type: "DutchOutput[]"},
	},
	"OrderInfo": {
		{Name: "reactor", Type: "address"},
		{Name: "swapper", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
		{Name: "additionalValidationContract", Type: "address"},
		{Name: "additionalValidationData", Type: "bytes"},
	},
	"DutchOutput": {
		{Name: "token", Type: "address"},
		{Name: "startAmount", Type: "uint256"},
		{Name: "endAmount", Type: "uint256"},
		{Name: "recipient", Type: "address"},
	},
}

// ExclusiveDutchOrder is a UniswapX order whose amounts decay linearly between
// DecayStartTime and DecayEndTime
type ExclusiveDutchOrder struct {
	Info                   OrderInfo
	DecayStartTime         uint64
	DecayEndTime           uint64
	ExclusiveFiller        common.Address
	ExclusivityOverrideBps *big.Int
	Input                  DutchInput
	Outputs                []DutchOutput

	ChainID *big.Int
	Permit2 common.Address
}

// NewExclusiveDutchOrder validates o and fills in protocol defaults
func NewExclusiveDutchOrder(o ExclusiveDutchOrder) (*ExclusiveDutchOrder, error) {
	check := orders.Require("uniswapx").
		Address("swapper", o.Info.Swapper).
		Address("input token", o.Input.Token).
		Amount("input amount", o.Input.EndAmount)
	if o.Info.Deadline == 0 {
		check.Amount("deadline", nil)
	}
	if len(o.Outputs) == 0 {
		check.Address("outputs", common.Address{})
	}
	if err := check.Err(); err != nil {
		return nil, err
	}
	if _, err := NewDutchInput(o.Input.Token, o.Input.StartAmount, o.Input.EndAmount); err != nil {
		return nil, err
	}
	for _, out := range o.Outputs {
		if _, err := NewDutchOutput(out.Token, out.StartAmount, out.EndAmount, out.Recipient); err != nil {
			return nil, err
		}
	}
	if o.DecayEndTime < o.DecayStartTime {
		return nil, fmt.Errorf("%w: decay ends at %d before it starts at %d", domain.ErrInvalidAmount, o.DecayEndTime, o.DecayStartTime)
	}
	if o.DecayEndTime > o.Info.Deadline {
		return nil, fmt.Errorf("%w: decay ends at %d after the deadline %d", domain.ErrInvalidAmount, o.DecayEndTime, o.Info.Deadline)
	}

	if o.Info.Reactor == (common.Address{}) {
		o.Info.Reactor = ExclusiveDutchOrderReactor
	}
	if o.Permit2 == (common.Address{}) {
		o.Permit2 = Permit2
	}
	o.Info.Nonce = orders.OrZero(o.Info.Nonce)
	o.ExclusivityOverrideBps = orders.OrZero(o.ExclusivityOverrideBps)
	return &o, nil
}

// TypedData returns the Permit2 witness transfer the swapper signs. Permit2 pulls at most the
// input's end amount.
func (o *ExclusiveDutchOrder) TypedData() apitypes.TypedData {
	outputs := make([]interface{}, len(o.Outputs))
	for i, out := range o.Outputs {
		outputs[i] = map[string]interface{}{
			"token":       orders.Addr(out.Token),
			"startAmount": out.StartAmount,
			"endAmount":   out.EndAmount,
			"recipient":   orders.Addr(out.Recipient),
		}
	}
	deadline := orders.Uint(o.Info.Deadline)

	return orders.NewTypedData(
		orders.Domain(Permit2DomainName, "", o.ChainID, o.Permit2),
		"PermitWitnessTransferFrom",
		witnessTypes,
		apitypes.TypedDataMessage{
			"permitted": map[string]interface{}{
				"token":  orders.Addr(o.Input.Token),
				"amount": o.Input.EndAmount,
			},
			"spender":  orders.Addr(o.Info.Reactor),
			"nonce":    o.Info.Nonce,
			"deadline": deadline,
			"witness": map[string]interface{}{
				"info": map[string]interface{}{
					"reactor":                      orders.Addr(o.Info.Reactor),
					"swapper":                      orders.Addr(o.Info.Swapper),
					"nonce":                        o.Info.Nonce,
					"deadline":                     deadline,
					"additionalValidationContract": orders.Addr(o.Info.AdditionalValidationContract),
					"additionalValidationData":     orders.Bytes(o.Info.AdditionalValidationData),
				},
				"decayStartTime":         orders.Uint(o.DecayStartTime),
				"decayEndTime":           orders.Uint(o.DecayEndTime),
				"exclusiveFiller":        orders.Addr(o.ExclusiveFiller),
				"exclusivityOverrideBps": o.ExclusivityOverrideBps,
				"inputToken":             orders.Addr(o.Input.Token),
				"inputStartAmount":       o.Input.StartAmount,
				"inputEndAmount":         o.Input.EndAmount,
				"outputs":                outputs,
			},
		},
	)
}

// Sign has the swapper sign the order
func (o *ExclusiveDutchOrder) Sign(ctx context.Context, signer orders.TypedDataSigner) ([]byte, error) {
	return orders.SignAs(ctx, signer, o.Info.Swapper, o.TypedData())
}

type abiInfo struct {
	Reactor                      common.Address
	Swapper                      common.Address
	Nonce                        *big.Int
	Deadline                     *big.Int
	AdditionalValidationContract common.Address
	AdditionalValidationData     []byte
}

type abiInput struct {
	Token       common.Address
	StartAmount *big.Int
	EndAmount   *big.Int
}

type abiOutput struct {
	Token       common.Address
	StartAmount *big.Int
	EndAmount   *big.Int
	Recipient   common.Address
}

type abiOrder struct {
	Info                   abiInfo
	DecayStartTime         *big.Int
	DecayEndTime           *big.Int
	ExclusiveFiller        common.Address
	ExclusivityOverrideBps *big.Int
	Input                  abiInput
	Outputs                []abiOutput
}

// Encode ABI-encodes the order the way the reactor decodes it from SignedOrder.order
func (o *ExclusiveDutchOrder) Encode() ([]byte, error) {
	outputs := make([]abiOutput, len(o.Outputs))
	for i, out := range o.Outputs {
		outputs[i] = abiOutput(out)
	}
	data, err := calldata.ExclusiveDutchOrderArgs.Pack(abiOrder{
		Info: abiInfo{
			Reactor:                      o.Info.Reactor,
			Swapper:                      o.Info.Swapper,
			Nonce:                        o.Info.Nonce,
			Deadline:                     orders.Uint(o.Info.Deadline),
			AdditionalValidationContract: o.Info.AdditionalValidationContract,
			AdditionalValidationData:     append([]byte{}, o.Info.AdditionalValidationData...),
		},
		DecayStartTime:         orders.Uint(o.DecayStartTime),
		DecayEndTime:           orders.Uint(o.DecayEndTime),
		ExclusiveFiller:        o.ExclusiveFiller,
		ExclusivityOverrideBps: o.ExclusivityOverrideBps,
		Input:                  abiInput(o.Input),
		Outputs:                outputs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode exclusive dutch order: %w", err)
	}
	return data, nil
}

// ExecuteCalldata encodes reactor.execute for the signed order
func (o *ExclusiveDutchOrder) ExecuteCalldata(sig []byte) ([]byte, error) {
	encoded, err := o.Encode()
	if err != nil {
		return nil, err
	}
	return calldata.ReactorExecute(calldata.SignedOrder{Order: encoded, Sig: sig})
}
