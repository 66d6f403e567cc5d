package calldata

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// Command is a Universal Router opcode
type Command byte

const (
	CmdV3SwapExactIn  Command = 0x00
	CmdV3SwapExactOut Command = 0x01
	CmdSweep          Command = 0x04
	CmdTransfer       Command = 0x05
	CmdV2SwapExactIn  Command = 0x08
	CmdWrapETH        Command = 0x0b
	CmdUnwrapWETH     Command = 0x0c

	// FlagAllowRevert lets the router continue when the command fails
	FlagAllowRevert Command = 0x80
)

// Recipient placeholders the router resolves at execution time
var (
	RecipientMsgSender   = common.HexToAddress("0x0000000000000000000000000000000000000001")
	RecipientAddressThis = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

var (
	v3SwapArgs = Arguments(
		arg("recipient", "address"),
		arg("amount", "uint256"),
		arg("amountLimit", "uint256"),
		arg("path", "bytes"),
		arg("payerIsUser", "bool"),
	)
	v2SwapArgs = Arguments(
		arg("recipient", "address"),
		arg("amountIn", "uint256"),
		arg("amountOutMin", "uint256"),
		arg("path", "address[]"),
		arg("payerIsUser", "bool"),
	)
	sweepArgs = Arguments(
		arg("token", "address"),
		arg("recipient", "address"),
		arg("amountMin", "uint256"),
	)
	recipientAmountArgs = Arguments(
		arg("recipient", "address"),
		arg("amount", "uint256"),
	)
)

// Planner accumulates Universal Router commands and their inputs in execution order
type Planner struct {
	commands []byte
	inputs   [][]byte
}

// NewPlanner creates an empty command plan
func NewPlanner() *Planner {
	return &Planner{}
}

func (p *Planner) add(cmd Command, args abi.Arguments, values ...interface{}) error {
	input, err := args.Pack(values...)
	if err != nil {
		return fmt.Errorf("failed to encode command 0x%02x: %w", byte(cmd), err)
	}
	p.commands = append(p.commands, byte(cmd))
	p.inputs = append(p.inputs, input)
	return nil
}

// V3SwapExactIn swaps amountIn along an encoded V3 path
func (p *Planner) V3SwapExactIn(recipient common.Address, amountIn, amountOutMin *big.Int, path []byte, payerIsUser bool) error {
	return p.add(CmdV3SwapExactIn, v3SwapArgs, recipient, amountIn, amountOutMin, path, payerIsUser)
}

// V3SwapExactOut buys amountOut along an encoded V3 path, which must be reversed (output first)
func (p *Planner) V3SwapExactOut(recipient common.Address, amountOut, amountInMax *big.Int, path []byte, payerIsUser bool) error {
	return p.add(CmdV3SwapExactOut, v3SwapArgs, recipient, amountOut, amountInMax, path, payerIsUser)
}

// V2SwapExactIn swaps amountIn along a list of V2 pair tokens
func (p *Planner) V2SwapExactIn(recipient common.Address, amountIn, amountOutMin *big.Int, path []common.Address, payerIsUser bool) error {
	if len(path) < 2 {
		return fmt.Errorf("%w: v2 path needs at least 2 tokens, got %d", domain.ErrPathLength, len(path))
	}
	return p.add(CmdV2SwapExactIn, v2SwapArgs, recipient, amountIn, amountOutMin, path, payerIsUser)
}

// WrapETH wraps amount of the router's ETH balance into WETH
func (p *Planner) WrapETH(recipient common.Address, amount *big.Int) error {
	return p.add(CmdWrapETH, recipientAmountArgs, recipient, amount)
}

// UnwrapWETH unwraps the router's WETH balance, requiring at least amountMin
func (p *Planner) UnwrapWETH(recipient common.Address, amountMin *big.Int) error {
	return p.add(CmdUnwrapWETH, recipientAmountArgs, recipient, amountMin)
}

// Sweep sends the router's whole balance of token to recipient
func (p *Planner) Sweep(token, recipient common.Address, amountMin *big.Int) error {
	return p.add(CmdSweep, sweepArgs, token, recipient, amountMin)
}

// Transfer sends value of the router's token balance to recipient
func (p *Planner) Transfer(token, recipient common.Address, value *big.Int) error {
	return p.add(CmdTransfer, sweepArgs, token, recipient, value)
}

// AllowRevert marks the most recently added command as allowed to fail
func (p *Planner) AllowRevert() {
	if n := len(p.commands); n > 0 {
		p.commands[n-1] |= byte(FlagAllowRevert)
	}
}

// Commands returns the opcode string
func (p *Planner) Commands() []byte {
	return append([]byte{}, p.commands...)
}

// Inputs returns the per-command encoded parameters
func (p *Planner) Inputs() [][]byte {
	return p.inputs
}

// Execute encodes UniversalRouter.execute(commands, inputs, deadline)
func (p *Planner) Execute(deadline uint64) ([]byte, error) {
	if len(p.commands) == 0 {
		return nil, fmt.Errorf("universal router plan has no commands")
	}
	return pack(universalRouterExecute, p.Commands(), p.inputs, new(big.Int).SetUint64(deadline))
}
