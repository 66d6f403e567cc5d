package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

var (
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	addressStyle       = color.New(color.FgWhite)
	faintStyle         = color.New(color.Faint)
)

// ScenariosRenderer renders the configured scenarios
type ScenariosRenderer struct {
	out io.Writer
}

// NewScenariosRenderer creates a new scenarios renderer
func NewScenariosRenderer(out io.Writer) *ScenariosRenderer {
	return &ScenariosRenderer{out: out}
}

// Render renders scenarios, tokens and protocol contracts
func (r *ScenariosRenderer) Render(result *usecase.ListScenariosResult) error {
	fmt.Fprintf(r.out, "%s %s (chain %d)\n\n", faintStyle.Sprint("Config:"), result.ConfigSource, result.ChainID)

	if len(result.Scenarios) == 0 {
		fmt.Fprintln(r.out, "No scenarios configured")
		return nil
	}

	fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("SCENARIOS"))
	tw := r.newTable()
	tw.AppendHeader(table.Row{"Name", "Sell", "Buy", "Pool", "Fee", "Slippage", "Protocols"})
	for _, s := range result.Scenarios {
		tw.AppendRow(table.Row{
			s.Name,
			fmt.Sprintf("%s %s", calldata.FormatUnits(s.SellAmount, s.Sell.Decimals), s.Sell.Symbol),
			fmt.Sprintf("%s %s", calldata.FormatUnits(s.BuyAmount, s.Buy.Decimals), s.Buy.Symbol),
			addressStyle.Sprint(shortAddress(s.Pool.Hex())),
			s.Fee,
			fmt.Sprintf("%d%%", s.SlippagePct),
			strings.Join(lo.Map(s.Protocols, func(p domain.ProtocolKey, _ int) string { return string(p) }), ", "),
		})
	}
	tw.Render()

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("TOKENS"))
	tw = r.newTable()
	tw.AppendHeader(table.Row{"Symbol", "Address", "Decimals", "Whale", "Fund"})
	for _, t := range result.Tokens {
		whale := faintStyle.Sprint("wrap ETH")
		if t.Whale != (common.Address{}) {
			whale = shortAddress(t.Whale.Hex())
		}
		fund := "-"
		if t.Fund != nil {
			fund = calldata.FormatUnits(t.Fund, t.Decimals)
		}
		tw.AppendRow(table.Row{t.Symbol, addressStyle.Sprint(t.Address.Hex()), t.Decimals, whale, fund})
	}
	tw.Render()

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("CONTRACTS"))
	tw = r.newTable()
	tw.AppendHeader(table.Row{"Protocol", "Contract", "Address"})
	for _, p := range domain.AllProtocols {
		c := result.Contracts.Target(p)
		tw.AppendRow(table.Row{string(p), c.Name, addressStyle.Sprint(c.Address.Hex())})
	}
	tw.Render()
	return nil
}

func (r *ScenariosRenderer) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Format.Header = text.FormatUpper
	return tw
}
