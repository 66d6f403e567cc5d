package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/orders/oneinch"
)

// OneInchUnoswapRunner swaps through the scenario's V3 pool with AggregationRouterV6.unoswap
type OneInchUnoswapRunner struct{}

func (OneInchUnoswapRunner) Protocol() domain.ProtocolKey { return domain.ProtocolOneInchUnoswap }

func (OneInchUnoswapRunner) Run(ctx context.Context, env *RunEnv, s domain.Scenario, fx *domain.Fixture) (*domain.Submission, error) {
	dex, err := calldata.PackPool(s.Pool, calldata.PoolFlags{ZeroForOne: s.ZeroForOne(), Protocol: calldata.PoolUniswapV3})
	if err != nil {
		return nil, err
	}
	minReturn, err := calldata.ApplySlippage(s.BuyAmount, s.SlippagePct)
	if err != nil {
		return nil, err
	}
	data, err := calldata.Unoswap(s.Sell.Address, s.SellAmount, minReturn, dex)
	if err != nil {
		return nil, fmt.Errorf("failed to encode unoswap: %w", err)
	}
	return submit(ctx, env, "unoswap", fx.Contracts.OneInchRouter, data, SwapChecks(s, fx, minReturn))
}

// OneInchLimitOrderRunner fills a maker's limit order through the LimitOrderProtocol
// embedded in AggregationRouterV6
type OneInchLimitOrderRunner struct{}

func (OneInchLimitOrderRunner) Protocol() domain.ProtocolKey { return domain.ProtocolOneInchLOP }

func (OneInchLimitOrderRunner) Run(ctx context.Context, env *RunEnv, s domain.Scenario, fx *domain.Fixture) (*domain.Submission, error) {
	order, err := oneinch.NewLimitOrder(oneinch.Params{
		Maker:        fx.Maker.Address,
		MakerAsset:   s.Sell.Address,
		TakerAsset:   s.Buy.Address,
		MakingAmount: s.SellAmount,
		TakingAmount: s.BuyAmount,
		Traits: oneinch.MakerTraits{
			AllowedSender: fx.Taker.Address,
			Expiration:    deadline(fx),
		},
		ChainID: fx.ChainID,
		Router:  fx.Contracts.OneInchRouter,
	})
	if err != nil {
		return nil, err
	}
	sig, err := order.Sign(ctx, env.Maker)
	if err != nil {
		return nil, err
	}
	data, err := order.FillCalldata(sig)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fillOrder: %w", err)
	}
	return submit(ctx, env, "fillOrder", fx.Contracts.OneInchRouter, data, OrderChecks(s, fx))
}
