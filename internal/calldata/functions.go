package calldata

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// ERC20 / WETH / Permit2

func ERC20Approve(spender common.Address, amount *big.Int) ([]byte, error) {
	return pack(erc20Approve, spender, amount)
}

func ERC20Transfer(to common.Address, amount *big.Int) ([]byte, error) {
	return pack(erc20Transfer, to, amount)
}

func ERC20TransferFrom(from, to common.Address, amount *big.Int) ([]byte, error) {
	return pack(erc20TransferFrom, from, to, amount)
}

func ERC20BalanceOf(account common.Address) ([]byte, error) {
	return pack(erc20BalanceOf, account)
}

func ERC20Allowance(owner, spender common.Address) ([]byte, error) {
	return pack(erc20Allowance, owner, spender)
}

// DecodeUint256 decodes the return value of balanceOf / allowance
func DecodeUint256(data []byte) (*big.Int, error) {
	v, err := unpackOne(erc20BalanceOf, data)
	if err != nil {
		return nil, err
	}
	return v.(*big.Int), nil
}

func WETHDeposit() ([]byte, error) {
	return pack(wethDeposit)
}

// Permit2Approve grants spender a Permit2 allowance of amount until expiration (unix seconds)
func Permit2Approve(token, spender common.Address, amount *big.Int, expiration uint64) ([]byte, error) {
	return pack(permit2Approve, token, spender, amount, new(big.Int).SetUint64(expiration))
}

// 1inch AggregationRouterV6

// Unoswap swaps amount of token through one to three packed dex words
func Unoswap(token common.Address, amount, minReturn *big.Int, dexes ...*big.Int) ([]byte, error) {
	tokenWord := new(big.Int).SetBytes(token.Bytes())
	switch len(dexes) {
	case 1:
		return pack(oneInchUnoswap, tokenWord, amount, minReturn, dexes[0])
	case 2:
		return pack(oneInchUnoswap2, tokenWord, amount, minReturn, dexes[0], dexes[1])
	case 3:
		return pack(oneInchUnoswap3, tokenWord, amount, minReturn, dexes[0], dexes[1], dexes[2])
	default:
		return nil, fmt.Errorf("%w: unoswap takes 1 to 3 dexes, got %d", domain.ErrPathLength, len(dexes))
	}
}

// EthUnoswap swaps msg.value of ETH through a single packed dex word
func EthUnoswap(minReturn, dex *big.Int) ([]byte, error) {
	return pack(oneInchEthUnoswap, minReturn, dex)
}

// OneInchOrder is the on-chain shape of a limit order: every address is carried as uint256
type OneInchOrder struct {
	Salt         *big.Int
	Maker        *big.Int
	Receiver     *big.Int
	MakerAsset   *big.Int
	TakerAsset   *big.Int
	MakingAmount *big.Int
	TakingAmount *big.Int
	MakerTraits  *big.Int
}

// FillOrder encodes LimitOrderProtocol.fillOrder with a compact r/vs signature
func FillOrder(order OneInchOrder, r, vs [32]byte, amount, takerTraits *big.Int) ([]byte, error) {
	return pack(oneInchFillOrder, order, r, vs, amount, takerTraits)
}

// UniswapX

// SignedOrder is the (order, sig) pair the reactor executes
type SignedOrder struct {
	Order []byte
	Sig   []byte
}

func ReactorExecute(order SignedOrder) ([]byte, error) {
	return pack(uniswapXExecute, order)
}

// 0x Exchange Proxy

type ZeroExRfqOrder struct {
	MakerToken  common.Address
	TakerToken  common.Address
	MakerAmount *big.Int
	TakerAmount *big.Int
	Maker       common.Address
	Taker       common.Address
	TxOrigin    common.Address
	Pool        [32]byte
	Expiry      uint64
	Salt        *big.Int
}

type ZeroExLimitOrder struct {
	MakerToken          common.Address
	TakerToken          common.Address
	MakerAmount         *big.Int
	TakerAmount         *big.Int
	TakerTokenFeeAmount *big.Int
	Maker               common.Address
	Taker               common.Address
	Sender              common.Address
	FeeRecipient        common.Address
	Pool                [32]byte
	Expiry              uint64
	Salt                *big.Int
}

type ZeroExSignature struct {
	SignatureType uint8
	V             uint8
	R             [32]byte
	S             [32]byte
}

func FillRfqOrder(order ZeroExRfqOrder, sig ZeroExSignature, takerTokenFillAmount *big.Int) ([]byte, error) {
	return pack(zeroExFillRfqOrder, order, sig, takerTokenFillAmount)
}

func FillLimitOrder(order ZeroExLimitOrder, sig ZeroExSignature, takerTokenFillAmount *big.Int) ([]byte, error) {
	return pack(zeroExFillLimitOrder, order, sig, takerTokenFillAmount)
}

// Paraswap AugustusRFQ

type ParaswapOrder struct {
	NonceAndMeta *big.Int
	Expiry       *big.Int
	MakerAsset   common.Address
	TakerAsset   common.Address
	Maker        common.Address
	Taker        common.Address
	MakerAmount  *big.Int
	TakerAmount  *big.Int
}

func AugustusFillOrder(order ParaswapOrder, signature []byte) ([]byte, error) {
	return pack(paraswapFillOrder, order, signature)
}

// CoW Protocol GPv2Settlement

type GPv2Trade struct {
	SellTokenIndex *big.Int
	BuyTokenIndex  *big.Int
	Receiver       common.Address
	SellAmount     *big.Int
	BuyAmount      *big.Int
	ValidTo        uint32
	AppData        [32]byte
	FeeAmount      *big.Int
	Flags          *big.Int
	ExecutedAmount *big.Int
	Signature      []byte
}

type GPv2Interaction struct {
	Target   common.Address
	Value    *big.Int
	CallData []byte
}

// Settle encodes GPv2Settlement.settle. Interactions run pre-, intra- and post-settlement.
func Settle(tokens []common.Address, clearingPrices []*big.Int, trades []GPv2Trade, interactions [3][]GPv2Interaction) ([]byte, error) {
	for i := range interactions {
		if interactions[i] == nil {
			interactions[i] = []GPv2Interaction{}
		}
	}
	return pack(gpv2Settle, tokens, clearingPrices, trades, interactions)
}

func GPv2Authenticator() ([]byte, error) { return pack(gpv2Authenticator) }
func GPv2VaultRelayer() ([]byte, error)  { return pack(gpv2VaultRelayer) }
func GPv2Manager() ([]byte, error)       { return pack(gpv2Manager) }

func GPv2AddSolver(solver common.Address) ([]byte, error) {
	return pack(gpv2AddSolver, solver)
}

func GPv2IsSolver(solver common.Address) ([]byte, error) {
	return pack(gpv2IsSolver, solver)
}

// DecodeAddress decodes a single address return value
func DecodeAddress(data []byte) (common.Address, error) {
	v, err := unpackOne(gpv2Manager, data)
	if err != nil {
		return common.Address{}, err
	}
	return v.(common.Address), nil
}

// DecodeBool decodes a single bool return value
func DecodeBool(data []byte) (bool, error) {
	v, err := unpackOne(gpv2IsSolver, data)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}
