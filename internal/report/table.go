// Package report accumulates gas measurements and derives the comparison shown at the end of a run.
package report

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// Table holds one measurement per (scenario, protocol) cell. Scenarios keep their first
// insertion order and protocols keep the fixed display order of domain.AllProtocols.
type Table struct {
	scenarios []string
	cells     map[string]map[domain.ProtocolKey]domain.GasMeasurement
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{cells: make(map[string]map[domain.ProtocolKey]domain.GasMeasurement)}
}

// Record stores a measurement. Each cell can be recorded once.
func (t *Table) Record(m domain.GasMeasurement) error {
	if m.Scenario == "" {
		return &domain.MissingFieldError{Order: "measurement", Field: "scenario"}
	}
	if m.Protocol.Index() < 0 {
		return fmt.Errorf("%w: %q", domain.ErrUnknownProtocol, m.Protocol)
	}

	row, ok := t.cells[m.Scenario]
	if !ok {
		row = make(map[domain.ProtocolKey]domain.GasMeasurement)
		t.cells[m.Scenario] = row
		t.scenarios = append(t.scenarios, m.Scenario)
	}
	if _, dup := row[m.Protocol]; dup {
		return fmt.Errorf("gas for %s/%s is already recorded", m.Scenario, m.Protocol)
	}
	row[m.Protocol] = m
	return nil
}

// Len returns the number of recorded cells
func (t *Table) Len() int {
	return lo.SumBy(lo.Values(t.cells), func(row map[domain.ProtocolKey]domain.GasMeasurement) int {
		return len(row)
	})
}

// Scenarios returns row labels in insertion order
func (t *Table) Scenarios() []string {
	return append([]string(nil), t.scenarios...)
}

// Protocols returns the columns that have at least one measurement, in display order
func (t *Table) Protocols() []domain.ProtocolKey {
	return lo.Filter(domain.AllProtocols, func(p domain.ProtocolKey, _ int) bool {
		return lo.SomeBy(lo.Values(t.cells), func(row map[domain.ProtocolKey]domain.GasMeasurement) bool {
			_, ok := row[p]
			return ok
		})
	})
}

// Get returns the measurement of a cell
func (t *Table) Get(scenario string, protocol domain.ProtocolKey) (domain.GasMeasurement, bool) {
	m, ok := t.cells[scenario][protocol]
	return m, ok
}

// Row returns the measurements of a scenario in display order
func (t *Table) Row(scenario string) []domain.GasMeasurement {
	row := lo.Values(t.cells[scenario])
	sort.Slice(row, func(i, j int) bool { return row[i].Protocol.Index() < row[j].Protocol.Index() })
	return row
}

// Measurements returns every cell, row by row
func (t *Table) Measurements() []domain.GasMeasurement {
	return lo.FlatMap(t.scenarios, func(s string, _ int) []domain.GasMeasurement { return t.Row(s) })
}

// Best returns the cheapest measurement of a scenario. Ties go to the earlier column.
func (t *Table) Best(scenario string) (domain.GasMeasurement, bool) {
	return t.extreme(scenario, func(a, b uint64) bool { return a < b })
}

// Worst returns the most expensive measurement of a scenario. Ties go to the earlier column.
func (t *Table) Worst(scenario string) (domain.GasMeasurement, bool) {
	return t.extreme(scenario, func(a, b uint64) bool { return a > b })
}

func (t *Table) extreme(scenario string, better func(a, b uint64) bool) (domain.GasMeasurement, bool) {
	row := t.Row(scenario)
	if len(row) == 0 {
		return domain.GasMeasurement{}, false
	}
	found := row[0]
	for _, m := range row[1:] {
		if better(m.GasUsed, found.GasUsed) {
			found = m
		}
	}
	return found, true
}

// Delta returns (gas - ref) / ref * 100 for a cell against the reference column of the same row.
// It reports false when either cell is missing or the reference is zero.
func (t *Table) Delta(scenario string, protocol, reference domain.ProtocolKey) (*big.Rat, bool) {
	cell, ok := t.Get(scenario, protocol)
	if !ok {
		return nil, false
	}
	ref, ok := t.Get(scenario, reference)
	if !ok || ref.GasUsed == 0 {
		return nil, false
	}
	return Percent(cell.GasUsed, ref.GasUsed), true
}

// Percent returns (value - ref) / ref * 100 exactly
func Percent(value, ref uint64) *big.Rat {
	diff := new(big.Int).Sub(new(big.Int).SetUint64(value), new(big.Int).SetUint64(ref))
	diff.Mul(diff, big.NewInt(100))
	return new(big.Rat).SetFrac(diff, new(big.Int).SetUint64(ref))
}

// FormatDelta renders a percentage with an explicit sign and two decimals, like "+12.50%"
func FormatDelta(pct *big.Rat) string {
	s := pct.FloatString(2)
	if s == "-0.00" {
		s = "0.00"
	}
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

// ParseGas parses a gas figure as printed in a report, ignoring thousands separators
func ParseGas(s string) (uint64, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ',', '_', '\'', ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, strings.TrimSpace(s))

	if clean == "" {
		return 0, fmt.Errorf("%w: empty gas value", domain.ErrInvalidAmount)
	}
	v, err := strconv.ParseUint(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: gas %q", domain.ErrInvalidAmount, s)
	}
	return v, nil
}
