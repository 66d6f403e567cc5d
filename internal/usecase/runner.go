package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// orderTTL bounds the validity of every signed order and router deadline, in seconds
const orderTTL = 3600

// RunEnv is what a runner needs to submit one benchmark transaction
type RunEnv struct {
	Chain ChainClient
	Maker AccountSigner
	Taker AccountSigner
	// Verify checks the balance deltas of every fill
	Verify bool
}

// Runner builds, signs and submits the benchmark transaction of one protocol
type Runner interface {
	Protocol() domain.ProtocolKey
	Run(ctx context.Context, env *RunEnv, scenario domain.Scenario, fx *domain.Fixture) (*domain.Submission, error)
}

// DefaultRunners returns a runner for every protocol, in report column order
func DefaultRunners() []Runner {
	return []Runner{
		OneInchUnoswapRunner{},
		OneInchLimitOrderRunner{},
		UniversalRouterRunner{},
		UniswapXRunner{},
		ZeroExRfqRunner{},
		ParaswapRfqRunner{},
		CoWSettlementRunner{},
	}
}

// RunnerFor finds the runner of protocol
func RunnerFor(runners []Runner, protocol domain.ProtocolKey) (Runner, error) {
	r, ok := lo.Find(runners, func(r Runner) bool { return r.Protocol() == protocol })
	if !ok {
		return nil, fmt.Errorf("%w: no runner for %s", domain.ErrUnknownProtocol, protocol)
	}
	return r, nil
}

// BalanceCheck is an expected change of one account's token balance across a fill
type BalanceCheck struct {
	Account string
	Holder  common.Address
	Token   domain.Token
	Delta   *big.Int
	// AtLeast accepts any change greater than or equal to Delta
	AtLeast bool

	before *big.Int
}

// OrderChecks are the exact deltas of a fully filled order: the maker gives the sell amount
// for the buy amount and the taker does the opposite.
func OrderChecks(scenario domain.Scenario, fx *domain.Fixture) []BalanceCheck {
	return []BalanceCheck{
		{Account: fx.Maker.Name, Holder: fx.Maker.Address, Token: scenario.Sell, Delta: new(big.Int).Neg(scenario.SellAmount)},
		{Account: fx.Maker.Name, Holder: fx.Maker.Address, Token: scenario.Buy, Delta: new(big.Int).Set(scenario.BuyAmount)},
		{Account: fx.Taker.Name, Holder: fx.Taker.Address, Token: scenario.Buy, Delta: new(big.Int).Neg(scenario.BuyAmount)},
		{Account: fx.Taker.Name, Holder: fx.Taker.Address, Token: scenario.Sell, Delta: new(big.Int).Set(scenario.SellAmount)},
	}
}

// SwapChecks are the deltas of a router swap by the taker: exactly the sell amount out and at
// least minReturn in.
func SwapChecks(scenario domain.Scenario, fx *domain.Fixture, minReturn *big.Int) []BalanceCheck {
	return []BalanceCheck{
		{Account: fx.Taker.Name, Holder: fx.Taker.Address, Token: scenario.Sell, Delta: new(big.Int).Neg(scenario.SellAmount)},
		{Account: fx.Taker.Name, Holder: fx.Taker.Address, Token: scenario.Buy, Delta: new(big.Int).Set(minReturn), AtLeast: true},
	}
}

// submit sends data from the taker and, when verification is on, compares the balance
// changes it caused against checks
func submit(ctx context.Context, env *RunEnv, label string, to common.Address, data []byte, checks []BalanceCheck) (*domain.Submission, error) {
	if env.Verify {
		for i := range checks {
			balance, err := env.Chain.TokenBalance(ctx, checks[i].Token.Address, checks[i].Holder)
			if err != nil {
				return nil, err
			}
			checks[i].before = balance
		}
	}

	sub, err := env.Chain.Send(ctx, env.Taker, Call{Label: label, To: to, Data: data})
	if err != nil {
		return nil, err
	}
	if !env.Verify {
		return sub, nil
	}

	for _, c := range checks {
		after, err := env.Chain.TokenBalance(ctx, c.Token.Address, c.Holder)
		if err != nil {
			return nil, err
		}
		actual := new(big.Int).Sub(after, c.before)
		cmp := actual.Cmp(c.Delta)
		if cmp == 0 || (c.AtLeast && cmp > 0) {
			continue
		}
		return nil, fmt.Errorf("%s: %w", label, &domain.BalanceMismatchError{
			Account:  c.Account,
			Token:    c.Token.Symbol,
			Expected: c.Delta,
			Actual:   actual,
			AtLeast:  c.AtLeast,
		})
	}
	return sub, nil
}

// deadline is the expiry of orders built on fx
func deadline(fx *domain.Fixture) uint64 {
	return fx.BlockTime + orderTTL
}
