package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/orders/cow"
)

// CoWSettlementRunner settles a single maker order with the taker acting as solver. The taker
// provides the buy side through intra-settlement interactions and receives the sell side.
type CoWSettlementRunner struct{}

func (CoWSettlementRunner) Protocol() domain.ProtocolKey { return domain.ProtocolCoW }

func (CoWSettlementRunner) Run(ctx context.Context, env *RunEnv, s domain.Scenario, fx *domain.Fixture) (*domain.Submission, error) {
	order, err := cow.NewOrder(cow.Order{
		SellToken:  s.Sell.Address,
		BuyToken:   s.Buy.Address,
		SellAmount: s.SellAmount,
		BuyAmount:  s.BuyAmount,
		ValidTo:    uint32(deadline(fx)),
		ChainID:    fx.ChainID,
		Settlement: fx.Contracts.GPv2Settlement,
	})
	if err != nil {
		return nil, err
	}
	sig, err := order.Sign(ctx, env.Maker)
	if err != nil {
		return nil, err
	}

	tokens := []common.Address{s.Sell.Address, s.Buy.Address}
	trade, err := order.Trade(0, 1, nil, sig)
	if err != nil {
		return nil, err
	}
	interactions, err := solverInteractions(s, fx)
	if err != nil {
		return nil, err
	}
	data, err := calldata.Settle(tokens, ClearingPrices(s), []calldata.GPv2Trade{trade}, interactions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settle: %w", err)
	}
	return submit(ctx, env, "settle", fx.Contracts.GPv2Settlement, data, OrderChecks(s, fx))
}

// ClearingPrices prices the sell token at the buy amount and the buy token at the sell amount,
// so the order executes at exactly its limit price.
func ClearingPrices(s domain.Scenario) []*big.Int {
	return []*big.Int{new(big.Int).Set(s.BuyAmount), new(big.Int).Set(s.SellAmount)}
}

func solverInteractions(s domain.Scenario, fx *domain.Fixture) ([3][]calldata.GPv2Interaction, error) {
	var out [3][]calldata.GPv2Interaction

	pull, err := calldata.ERC20TransferFrom(fx.Taker.Address, fx.Contracts.GPv2Settlement, s.BuyAmount)
	if err != nil {
		return out, err
	}
	pay, err := calldata.ERC20Transfer(fx.Taker.Address, s.SellAmount)
	if err != nil {
		return out, err
	}
	out[1] = []calldata.GPv2Interaction{
		{Target: s.Buy.Address, Value: new(big.Int), CallData: pull},
		{Target: s.Sell.Address, Value: new(big.Int), CallData: pay},
	}
	return out, nil
}
