package calldata

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// arg is shorthand for an ABI argument description
func arg(name, typ string, components ...abi.ArgumentMarshaling) abi.ArgumentMarshaling {
	return abi.ArgumentMarshaling{Name: name, Type: typ, Components: components}
}

// Arguments builds abi.Arguments from descriptions. It panics on malformed types since all
// descriptions in this package are constants.
func Arguments(descs ...abi.ArgumentMarshaling) abi.Arguments {
	args := make(abi.Arguments, len(descs))
	for i, d := range descs {
		typ, err := abi.NewType(d.Type, d.InternalType, d.Components)
		if err != nil {
			panic(fmt.Sprintf("calldata: bad ABI type %s for %s: %v", d.Type, d.Name, err))
		}
		args[i] = abi.Argument{Name: d.Name, Type: typ}
	}
	return args
}

func function(name string, payable bool, inputs []abi.ArgumentMarshaling, outputs ...abi.ArgumentMarshaling) abi.Method {
	mutability := "nonpayable"
	if payable {
		mutability = "payable"
	}
	return abi.NewMethod(name, name, abi.Function, mutability, false, payable, Arguments(inputs...), Arguments(outputs...))
}

func view(name string, inputs []abi.ArgumentMarshaling, outputs ...abi.ArgumentMarshaling) abi.Method {
	return abi.NewMethod(name, name, abi.Function, "view", true, false, Arguments(inputs...), Arguments(outputs...))
}

func in(args ...abi.ArgumentMarshaling) []abi.ArgumentMarshaling { return args }

// Tuple layouts shared between builders and function encoders
var (
	oneInchOrderComponents = []abi.ArgumentMarshaling{
		arg("salt", "uint256"),
		arg("maker", "uint256"),
		arg("receiver", "uint256"),
		arg("makerAsset", "uint256"),
		arg("takerAsset", "uint256"),
		arg("makingAmount", "uint256"),
		arg("takingAmount", "uint256"),
		arg("makerTraits", "uint256"),
	}

	zeroExRfqOrderComponents = []abi.ArgumentMarshaling{
		arg("makerToken", "address"),
		arg("takerToken", "address"),
		arg("makerAmount", "uint128"),
		arg("takerAmount", "uint128"),
		arg("maker", "address"),
		arg("taker", "address"),
		arg("txOrigin", "address"),
		arg("pool", "bytes32"),
		arg("expiry", "uint64"),
		arg("salt", "uint256"),
	}

	zeroExLimitOrderComponents = []abi.ArgumentMarshaling{
		arg("makerToken", "address"),
		arg("takerToken", "address"),
		arg("makerAmount", "uint128"),
		arg("takerAmount", "uint128"),
		arg("takerTokenFeeAmount", "uint128"),
		arg("maker", "address"),
		arg("taker", "address"),
		arg("sender", "address"),
		arg("feeRecipient", "address"),
		arg("pool", "bytes32"),
		arg("expiry", "uint64"),
		arg("salt", "uint256"),
	}

	zeroExSignatureComponents = []abi.ArgumentMarshaling{
		arg("signatureType", "uint8"),
		arg("v", "uint8"),
		arg("r", "bytes32"),
		arg("s", "bytes32"),
	}

	paraswapOrderComponents = []abi.ArgumentMarshaling{
		arg("nonceAndMeta", "uint256"),
		arg("expiry", "uint128"),
		arg("makerAsset", "address"),
		arg("takerAsset", "address"),
		arg("maker", "address"),
		arg("taker", "address"),
		arg("makerAmount", "uint256"),
		arg("takerAmount", "uint256"),
	}

	gpv2TradeComponents = []abi.ArgumentMarshaling{
		arg("sellTokenIndex", "uint256"),
		arg("buyTokenIndex", "uint256"),
		arg("receiver", "address"),
		arg("sellAmount", "uint256"),
		arg("buyAmount", "uint256"),
		arg("validTo", "uint32"),
		arg("appData", "bytes32"),
		arg("feeAmount", "uint256"),
		arg("flags", "uint256"),
		arg("executedAmount", "uint256"),
		arg("signature", "bytes"),
	}

	gpv2InteractionComponents = []abi.ArgumentMarshaling{
		arg("target", "address"),
		arg("value", "uint256"),
		arg("callData", "bytes"),
	}

	dutchOrderInfoComponents = []abi.ArgumentMarshaling{
		arg("reactor", "address"),
		arg("swapper", "address"),
		arg("nonce", "uint256"),
		arg("deadline", "uint256"),
		arg("additionalValidationContract", "address"),
		arg("additionalValidationData", "bytes"),
	}

	// ExclusiveDutchOrderArgs ABI-encodes a UniswapX exclusive dutch order as the reactor decodes it
	ExclusiveDutchOrderArgs = Arguments(arg("order", "tuple",
		arg("info", "tuple", dutchOrderInfoComponents...),
		arg("decayStartTime", "uint256"),
		arg("decayEndTime", "uint256"),
		arg("exclusiveFiller", "address"),
		arg("exclusivityOverrideBps", "uint256"),
		arg("input", "tuple",
			arg("token", "address"),
			arg("startAmount", "uint256"),
			arg("endAmount", "uint256"),
		),
		arg("outputs", "tuple[]",
			arg("token", "address"),
			arg("startAmount", "uint256"),
			arg("endAmount", "uint256"),
			arg("recipient", "address"),
		),
	))
)

// Functions of the contracts gasbench calls
var (
	erc20Approve      = function("approve", false, in(arg("spender", "address"), arg("amount", "uint256")), arg("", "bool"))
	erc20Transfer     = function("transfer", false, in(arg("to", "address"), arg("amount", "uint256")), arg("", "bool"))
	erc20TransferFrom = function("transferFrom", false, in(
		arg("from", "address"), arg("to", "address"), arg("amount", "uint256"),
	), arg("", "bool"))
	erc20BalanceOf = view("balanceOf", in(arg("account", "address")), arg("", "uint256"))
	erc20Allowance = view("allowance", in(arg("owner", "address"), arg("spender", "address")), arg("", "uint256"))
	wethDeposit    = function("deposit", true, nil)

	permit2Approve = function("approve", false, in(
		arg("token", "address"),
		arg("spender", "address"),
		arg("amount", "uint160"),
		arg("expiration", "uint48"),
	))

	oneInchUnoswap = function("unoswap", false, in(
		arg("token", "uint256"), arg("amount", "uint256"), arg("minReturn", "uint256"), arg("dex", "uint256"),
	), arg("returnAmount", "uint256"))
	oneInchUnoswap2 = function("unoswap2", false, in(
		arg("token", "uint256"), arg("amount", "uint256"), arg("minReturn", "uint256"),
		arg("dex", "uint256"), arg("dex2", "uint256"),
	), arg("returnAmount", "uint256"))
	oneInchUnoswap3 = function("unoswap3", false, in(
		arg("token", "uint256"), arg("amount", "uint256"), arg("minReturn", "uint256"),
		arg("dex", "uint256"), arg("dex2", "uint256"), arg("dex3", "uint256"),
	), arg("returnAmount", "uint256"))
	oneInchEthUnoswap = function("ethUnoswap", true, in(
		arg("minReturn", "uint256"), arg("dex", "uint256"),
	), arg("returnAmount", "uint256"))
	oneInchFillOrder = function("fillOrder", true, in(
		arg("order", "tuple", oneInchOrderComponents...),
		arg("r", "bytes32"),
		arg("vs", "bytes32"),
		arg("amount", "uint256"),
		arg("takerTraits", "uint256"),
	), arg("makingAmount", "uint256"), arg("takingAmount", "uint256"), arg("orderHash", "bytes32"))

	universalRouterExecute = function("execute", true, in(
		arg("commands", "bytes"), arg("inputs", "bytes[]"), arg("deadline", "uint256"),
	))

	uniswapXExecute = function("execute", true, in(
		arg("order", "tuple", arg("order", "bytes"), arg("sig", "bytes")),
	))

	zeroExFillRfqOrder = function("fillRfqOrder", false, in(
		arg("order", "tuple", zeroExRfqOrderComponents...),
		arg("signature", "tuple", zeroExSignatureComponents...),
		arg("takerTokenFillAmount", "uint128"),
	), arg("takerTokenFilledAmount", "uint128"), arg("makerTokenFilledAmount", "uint128"))
	zeroExFillLimitOrder = function("fillLimitOrder", true, in(
		arg("order", "tuple", zeroExLimitOrderComponents...),
		arg("signature", "tuple", zeroExSignatureComponents...),
		arg("takerTokenFillAmount", "uint128"),
	), arg("takerTokenFilledAmount", "uint128"), arg("makerTokenFilledAmount", "uint128"))

	paraswapFillOrder = function("fillOrder", false, in(
		arg("order", "tuple", paraswapOrderComponents...),
		arg("signature", "bytes"),
	))

	gpv2Settle = function("settle", false, in(
		arg("tokens", "address[]"),
		arg("clearingPrices", "uint256[]"),
		arg("trades", "tuple[]", gpv2TradeComponents...),
		arg("interactions", "tuple[][3]", gpv2InteractionComponents...),
	))
	gpv2Authenticator = view("authenticator", nil, arg("", "address"))
	gpv2VaultRelayer  = view("vaultRelayer", nil, arg("", "address"))
	gpv2Manager       = view("manager", nil, arg("", "address"))
	gpv2AddSolver     = function("addSolver", false, in(arg("solver", "address")))
	gpv2IsSolver      = view("isSolver", in(arg("prospectiveSolver", "address")), arg("", "bool"))
)

// pack prefixes the method selector to its ABI-encoded arguments
func pack(m abi.Method, args ...interface{}) ([]byte, error) {
	encoded, err := m.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Sig, err)
	}
	return append(append([]byte{}, m.ID...), encoded...), nil
}

// unpackOne decodes a single return value
func unpackOne(m abi.Method, data []byte) (interface{}, error) {
	values, err := m.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", m.Sig, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("failed to decode %s result: got %d values", m.Sig, len(values))
	}
	return values[0], nil
}
