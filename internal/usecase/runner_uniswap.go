package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/orders/uniswapx"
)

// UniversalRouterRunner swaps through the scenario's V3 pool with a single V3_SWAP_EXACT_IN
// command, paying through the taker's Permit2 allowance
type UniversalRouterRunner struct{}

func (UniversalRouterRunner) Protocol() domain.ProtocolKey { return domain.ProtocolUniswapUniversal }

func (UniversalRouterRunner) Run(ctx context.Context, env *RunEnv, s domain.Scenario, fx *domain.Fixture) (*domain.Submission, error) {
	path, err := calldata.EncodeV3Path([]common.Address{s.Sell.Address, s.Buy.Address}, []uint32{s.Fee})
	if err != nil {
		return nil, err
	}
	minReturn, err := calldata.ApplySlippage(s.BuyAmount, s.SlippagePct)
	if err != nil {
		return nil, err
	}

	plan := calldata.NewPlanner()
	if err := plan.V3SwapExactIn(calldata.RecipientMsgSender, s.SellAmount, minReturn, path, true); err != nil {
		return nil, err
	}
	data, err := plan.Execute(deadline(fx))
	if err != nil {
		return nil, err
	}
	return submit(ctx, env, "execute", fx.Contracts.UniversalRouter, data, SwapChecks(s, fx, minReturn))
}

// UniswapXRunner fills an exclusive dutch order with the taker as the direct filler. Start and
// end amounts are equal, so the fill moves the exact order amounts.
type UniswapXRunner struct{}

func (UniswapXRunner) Protocol() domain.ProtocolKey { return domain.ProtocolUniswapX }

func (UniswapXRunner) Run(ctx context.Context, env *RunEnv, s domain.Scenario, fx *domain.Fixture) (*domain.Submission, error) {
	input, err := uniswapx.NewDutchInput(s.Sell.Address, s.SellAmount, s.SellAmount)
	if err != nil {
		return nil, err
	}
	output, err := uniswapx.NewDutchOutput(s.Buy.Address, s.BuyAmount, s.BuyAmount, fx.Maker.Address)
	if err != nil {
		return nil, err
	}

	order, err := uniswapx.NewExclusiveDutchOrder(uniswapx.ExclusiveDutchOrder{
		Info: uniswapx.OrderInfo{
			Reactor:  fx.Contracts.UniswapXReactor,
			Swapper:  fx.Maker.Address,
			Deadline: deadline(fx),
		},
		DecayStartTime:  fx.BlockTime,
		DecayEndTime:    deadline(fx),
		ExclusiveFiller: fx.Taker.Address,
		Input:           input,
		Outputs:         []uniswapx.DutchOutput{output},
		ChainID:         fx.ChainID,
		Permit2:         fx.Contracts.Permit2,
	})
	if err != nil {
		return nil, err
	}
	sig, err := order.Sign(ctx, env.Maker)
	if err != nil {
		return nil, err
	}
	data, err := order.ExecuteCalldata(sig)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reactor execute: %w", err)
	}
	return submit(ctx, env, "reactor execute", fx.Contracts.UniswapXReactor, data, OrderChecks(s, fx))
}
