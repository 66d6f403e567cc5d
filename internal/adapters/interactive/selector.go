package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/domain/config"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

const allScenarios = "All scenarios"

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
	run    func(prompt promptui.Select) (int, error)
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) (*SelectorAdapter, error) {
	return &SelectorAdapter{config: cfg, run: runSelect}, nil
}

func runSelect(prompt promptui.Select) (int, error) {
	index, _, err := prompt.Run()
	return index, err
}

// SelectScenarios lets the user pick one scenario or all of them
func (s *SelectorAdapter) SelectScenarios(ctx context.Context, scenarios []domain.Scenario, prompt string) ([]domain.Scenario, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios provided for selection")
	}

	// Nothing to choose, or nobody to ask
	if len(scenarios) == 1 || s.config.NonInteractive {
		return scenarios, nil
	}

	options := append([]string{color.New(color.FgWhite, color.Bold).Sprint(allScenarios)}, formatScenarioOptions(scenarios)...)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  createFuzzySearchFunc(options),
	}

	index, err := s.run(promptSelect)
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	if index == 0 {
		return scenarios, nil
	}
	return []domain.Scenario{scenarios[index-1]}, nil
}

// formatScenarioOptions creates display strings for scenario selection
func formatScenarioOptions(scenarios []domain.Scenario) []string {
	options := make([]string, len(scenarios))
	for i, sc := range scenarios {
		// Format as "weth-usdc (0.1 WETH → 300 USDC)"
		name := color.New(color.FgWhite, color.Bold).Sprint(sc.Name)
		trade := color.New(color.FgBlue).Sprintf("%s %s → %s %s",
			calldata.FormatUnits(sc.SellAmount, sc.Sell.Decimals), sc.Sell.Symbol,
			calldata.FormatUnits(sc.BuyAmount, sc.Buy.Decimals), sc.Buy.Symbol,
		)
		options[i] = fmt.Sprintf("%s (%s)", name, trade)
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.ScenarioSelector = (*SelectorAdapter)(nil)
