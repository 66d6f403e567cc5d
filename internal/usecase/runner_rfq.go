package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/orders/paraswap"
	"github.com/trebuchet-org/gasbench/internal/orders/zeroex"
)

// ZeroExRfqRunner fills an RFQ order on the 0x Exchange Proxy with the taker as tx.origin
type ZeroExRfqRunner struct{}

func (ZeroExRfqRunner) Protocol() domain.ProtocolKey { return domain.ProtocolZeroExRFQ }

func (ZeroExRfqRunner) Run(ctx context.Context, env *RunEnv, s domain.Scenario, fx *domain.Fixture) (*domain.Submission, error) {
	order, err := zeroex.NewRfqOrder(zeroex.RfqOrder{
		MakerToken:  s.Sell.Address,
		TakerToken:  s.Buy.Address,
		MakerAmount: s.SellAmount,
		TakerAmount: s.BuyAmount,
		Maker:       fx.Maker.Address,
		TxOrigin:    fx.Taker.Address,
		Expiry:      deadline(fx),
		Salt:        new(big.Int).SetUint64(fx.BlockTime),
		ChainID:     fx.ChainID,
		Proxy:       fx.Contracts.ZeroExProxy,
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
		return nil, fmt.Errorf("failed to encode fillRfqOrder: %w", err)
	}
	return submit(ctx, env, "fillRfqOrder", fx.Contracts.ZeroExProxy, data, OrderChecks(s, fx))
}

// ParaswapRfqRunner fills an AugustusRFQ order restricted to the taker
type ParaswapRfqRunner struct{}

func (ParaswapRfqRunner) Protocol() domain.ProtocolKey { return domain.ProtocolParaswapRFQ }

func (ParaswapRfqRunner) Run(ctx context.Context, env *RunEnv, s domain.Scenario, fx *domain.Fixture) (*domain.Submission, error) {
	order, err := paraswap.NewOrder(paraswap.Params{
		Nonce:       new(big.Int).SetUint64(fx.BlockTime),
		Expiry:      deadline(fx),
		MakerAsset:  s.Sell.Address,
		TakerAsset:  s.Buy.Address,
		Maker:       fx.Maker.Address,
		Taker:       fx.Taker.Address,
		MakerAmount: s.SellAmount,
		TakerAmount: s.BuyAmount,
		ChainID:     fx.ChainID,
		Contract:    fx.Contracts.AugustusRFQ,
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
		return nil, fmt.Errorf("failed to encode AugustusRFQ fillOrder: %w", err)
	}
	return submit(ctx, env, "AugustusRFQ fillOrder", fx.Contracts.AugustusRFQ, data, OrderChecks(s, fx))
}
