package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/trebuchet-org/gasbench/internal/report"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

var (
	gasPrinter = message.NewPrinter(language.English)

	bestStyle      = color.New(color.FgGreen, color.Bold)
	worstStyle     = color.New(color.FgRed)
	referenceStyle = color.New(color.FgCyan)
	deltaStyle     = color.New(color.Faint)
)

// FormatGas renders a gas figure with thousands separators, like "123,456"
func FormatGas(gas uint64) string {
	return gasPrinter.Sprintf("%d", gas)
}

// GasReport is the machine-readable form of a benchmark run
type GasReport struct {
	RunID        string     `json:"runId" yaml:"runId"`
	ChainID      string     `json:"chainId" yaml:"chainId"`
	RPCURL       string     `json:"rpcUrl,omitempty" yaml:"rpcUrl,omitempty"`
	Reference    string     `json:"reference" yaml:"reference"`
	Measurements []GasEntry `json:"measurements" yaml:"measurements"`
}

// GasEntry is one cell of the report
type GasEntry struct {
	Scenario string `json:"scenario" yaml:"scenario"`
	Protocol string `json:"protocol" yaml:"protocol"`
	GasUsed  uint64 `json:"gasUsed" yaml:"gasUsed"`
	TxHash   string `json:"txHash,omitempty" yaml:"txHash,omitempty"`
	// Delta is the difference to the reference protocol of the same scenario
	Delta string `json:"delta,omitempty" yaml:"delta,omitempty"`
	Best  bool   `json:"best,omitempty" yaml:"best,omitempty"`
}

// GasRenderer renders the gas comparison of a benchmark run
type GasRenderer struct {
	out    io.Writer
	format string
	color  bool
}

// NewGasRenderer creates a renderer writing format ("table", "json" or "yaml") to out
func NewGasRenderer(out io.Writer, format string, color bool) *GasRenderer {
	return &GasRenderer{
		out:    out,
		format: format,
		color:  color,
	}
}

// Render renders the result of a benchmark run
func (r *GasRenderer) Render(result *usecase.RunBenchmarkResult) error {
	switch r.format {
	case "json":
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(NewGasReport(result))
	case "yaml":
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(NewGasReport(result)); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
		return r.renderTable(result)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// NewGasReport flattens a run into its export form
func NewGasReport(result *usecase.RunBenchmarkResult) *GasReport {
	rep := &GasReport{
		RunID:        result.RunID.String(),
		Reference:    string(result.Reference),
		Measurements: []GasEntry{},
	}
	if result.ChainID != nil {
		rep.ChainID = result.ChainID.String()
	}
	if result.Fork != nil {
		rep.RPCURL = result.Fork.RPCURL()
	}

	t := result.Table
	for _, m := range t.Measurements() {
		entry := GasEntry{
			Scenario: m.Scenario,
			Protocol: string(m.Protocol),
			GasUsed:  m.GasUsed,
		}
		if m.TxHash != (common.Hash{}) {
			entry.TxHash = m.TxHash.Hex()
		}
		if m.Protocol != result.Reference {
			if delta, ok := t.Delta(m.Scenario, m.Protocol, result.Reference); ok {
				entry.Delta = report.FormatDelta(delta)
			}
		}
		if best, ok := t.Best(m.Scenario); ok && best.Protocol == m.Protocol {
			entry.Best = true
		}
		rep.Measurements = append(rep.Measurements, entry)
	}
	return rep
}

func (r *GasRenderer) renderTable(result *usecase.RunBenchmarkResult) error {
	t := result.Table
	if t.Len() == 0 {
		fmt.Fprintln(r.out, "No measurements recorded")
		return nil
	}
	protocols := t.Protocols()

	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.DrawBorder = true
	tw.Style().Format.Header = text.FormatDefault

	header := table.Row{"Scenario"}
	for _, p := range protocols {
		label := string(p)
		if p == result.Reference {
			label = r.paint(referenceStyle, label+" (ref)")
		}
		header = append(header, label)
	}
	tw.AppendHeader(header)

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for i := range protocols {
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)

	for _, scenario := range t.Scenarios() {
		row := table.Row{scenario}
		best, _ := t.Best(scenario)
		worst, _ := t.Worst(scenario)
		contested := len(t.Row(scenario)) > 1

		for _, p := range protocols {
			m, ok := t.Get(scenario, p)
			if !ok {
				row = append(row, r.paint(deltaStyle, "-"))
				continue
			}

			cell := FormatGas(m.GasUsed)
			switch {
			case contested && p == best.Protocol:
				cell = r.paint(bestStyle, cell)
			case contested && p == worst.Protocol:
				cell = r.paint(worstStyle, cell)
			}
			if p != result.Reference {
				if delta, ok := t.Delta(scenario, p, result.Reference); ok {
					cell += " " + r.paint(deltaStyle, "("+report.FormatDelta(delta)+")")
				}
			}
			row = append(row, cell)
		}
		tw.AppendRow(row)
	}

	tw.Render()
	fmt.Fprintf(r.out, "\nRun %s, chain %s, deltas against %s\n", result.RunID, result.ChainID, result.Reference)
	return nil
}

func (r *GasRenderer) paint(style *color.Color, s string) string {
	if !r.color {
		return s
	}
	return style.Sprint(s)
}
