package usecase

import (
	"context"
	"sort"

	"github.com/samber/lo"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/domain/config"
)

// ListScenariosParams filters the listing
type ListScenariosParams struct {
	Protocol domain.ProtocolKey // only scenarios that benchmark this protocol
}

// ListScenariosResult contains the configured benchmark inputs
type ListScenariosResult struct {
	ConfigSource string
	ChainID      uint64
	Scenarios    []domain.Scenario
	Tokens       []domain.Token
	Contracts    domain.Contracts
}

// ListScenarios is a use case for listing the configured scenarios
type ListScenarios struct {
	config *config.RuntimeConfig
}

// NewListScenarios creates a new ListScenarios use case
func NewListScenarios(cfg *config.RuntimeConfig) *ListScenarios {
	return &ListScenarios{config: cfg}
}

// Run lists scenarios and the tokens they trade
func (uc *ListScenarios) Run(ctx context.Context, params ListScenariosParams) (*ListScenariosResult, error) {
	scenarios := uc.config.Scenarios
	if params.Protocol != "" {
		scenarios = lo.Filter(scenarios, func(s domain.Scenario, _ int) bool {
			return s.Includes(params.Protocol)
		})
	}

	tokens := lo.Values(uc.config.Tokens)
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Symbol < tokens[j].Symbol })

	return &ListScenariosResult{
		ConfigSource: uc.config.ConfigSource,
		ChainID:      uc.config.ChainID,
		Scenarios:    scenarios,
		Tokens:       tokens,
		Contracts:    uc.config.Contracts,
	}, nil
}
