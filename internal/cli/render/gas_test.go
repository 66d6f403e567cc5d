package render

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/report"
	"github.com/trebuchet-org/gasbench/internal/usecase"
	"gopkg.in/yaml.v3"
)

func benchmarkResult(t *testing.T) *usecase.RunBenchmarkResult {
	t.Helper()
	table := report.NewTable()
	for _, m := range []domain.GasMeasurement{
		{Scenario: "weth-usdc", Protocol: domain.ProtocolParaswapRFQ, GasUsed: 120_000},
		{Scenario: "weth-usdc", Protocol: domain.ProtocolZeroExRFQ, GasUsed: 100_000, TxHash: common.HexToHash("0xabc")},
		{Scenario: "weth-usdc", Protocol: domain.ProtocolOneInchLOP, GasUsed: 140_000},
		{Scenario: "usdc-weth", Protocol: domain.ProtocolZeroExRFQ, GasUsed: 98_765},
	} {
		require.NoError(t, table.Record(m))
	}
	return &usecase.RunBenchmarkResult{
		RunID:     uuid.MustParse("6f1d1a8e-2c4b-4f4e-9b7a-6d0c1e2f3a4b"),
		ChainID:   big.NewInt(1),
		Reference: domain.ProtocolZeroExRFQ,
		Table:     table,
		Fork:      &domain.AnvilInstance{Port: "8545"},
	}
}

func TestFormatGas(t *testing.T) {
	assert.Equal(t, "0", FormatGas(0))
	assert.Equal(t, "999", FormatGas(999))
	assert.Equal(t, "123,456", FormatGas(123_456))
	assert.Equal(t, "1,234,567", FormatGas(1_234_567))

	for _, gas := range []uint64{0, 21_000, 1_234_567, 30_000_000} {
		parsed, err := report.ParseGas(FormatGas(gas))
		require.NoError(t, err)
		assert.Equal(t, gas, parsed)
	}
}

func TestGasRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewGasRenderer(&out, "table", false).Render(benchmarkResult(t)))
	s := out.String()

	assert.Contains(t, s, "0x-rfq (ref)")
	assert.Contains(t, s, "100,000")
	assert.Contains(t, s, "120,000 (+20.00%)")
	assert.Contains(t, s, "140,000 (+40.00%)")
	assert.Contains(t, s, "98,765")
	assert.NotContains(t, s, "98,765 (")
	assert.Contains(t, s, "Run 6f1d1a8e-2c4b-4f4e-9b7a-6d0c1e2f3a4b, chain 1, deltas against 0x-rfq")

	// columns follow the fixed protocol order
	assert.Less(t, strings.Index(s, "1inch-lop"), strings.Index(s, "0x-rfq"))
	assert.Less(t, strings.Index(s, "0x-rfq"), strings.Index(s, "paraswap-rfq"))
	// rows keep insertion order
	assert.Less(t, strings.Index(s, "weth-usdc"), strings.Index(s, "usdc-weth"))
}

func TestGasRenderer_Empty(t *testing.T) {
	var out bytes.Buffer
	result := &usecase.RunBenchmarkResult{Table: report.NewTable()}
	require.NoError(t, NewGasRenderer(&out, "table", false).Render(result))
	assert.Equal(t, "No measurements recorded\n", out.String())
}

func TestGasRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewGasRenderer(&out, "json", false).Render(benchmarkResult(t)))

	var rep GasReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, "6f1d1a8e-2c4b-4f4e-9b7a-6d0c1e2f3a4b", rep.RunID)
	assert.Equal(t, "1", rep.ChainID)
	assert.Equal(t, "0x-rfq", rep.Reference)
	assert.Equal(t, "http://127.0.0.1:8545", rep.RPCURL)
	require.Len(t, rep.Measurements, 4)

	assert.Equal(t, GasEntry{
		Scenario: "weth-usdc",
		Protocol: "1inch-lop",
		GasUsed:  140_000,
		Delta:    "+40.00%",
	}, rep.Measurements[0])
	assert.Equal(t, GasEntry{
		Scenario: "weth-usdc",
		Protocol: "0x-rfq",
		GasUsed:  100_000,
		TxHash:   common.HexToHash("0xabc").Hex(),
		Best:     true,
	}, rep.Measurements[1])
	assert.Equal(t, "usdc-weth", rep.Measurements[3].Scenario)
}

func TestGasRenderer_YAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewGasRenderer(&out, "yaml", false).Render(benchmarkResult(t)))
	assert.True(t, strings.HasPrefix(out.String(), "runId: 6f1d1a8e-2c4b-4f4e-9b7a-6d0c1e2f3a4b\n"))

	var rep GasReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rep))
	require.Len(t, rep.Measurements, 4)
	assert.Equal(t, "+20.00%", rep.Measurements[2].Delta)
}

func TestGasRenderer_UnknownFormat(t *testing.T) {
	err := NewGasRenderer(&bytes.Buffer{}, "csv", false).Render(benchmarkResult(t))
	assert.EqualError(t, err, "unknown format: csv")
}
