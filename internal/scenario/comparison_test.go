package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/whatif-futures/internal/analytics"
)

func comparisonFixture() []*Scenario {
	baseline := &Scenario{
		Name:       "Baseline (Actual)",
		IsBaseline: true,
		Metrics:    analytics.Metrics{TotalPnL: 1000, WinRate: 50, ProfitFactor: 2.0},
	}
	variant := &Scenario{
		Name:    "tight stop",
		Metrics: analytics.Metrics{TotalPnL: 1500, WinRate: 40, ProfitFactor: 2.5},
	}
	return []*Scenario{baseline, variant}
}

func TestBuildComparisonMatrix(t *testing.T) {
	rows := BuildComparisonMatrix(comparisonFixture(), []string{"total_pnl", "win_rate"})
	require.Len(t, rows, 2)

	base, variant := rows[0], rows[1]
	assert.True(t, base.IsBaseline)
	require.InDelta(t, 0.0, base.Delta["total_pnl"], 0.001)

	require.InDelta(t, 500.0, variant.Delta["total_pnl"], 0.001)
	require.InDelta(t, 50.0, variant.DeltaPct["total_pnl"], 0.001)
	require.InDelta(t, -10.0, variant.Delta["win_rate"], 0.001)
	require.InDelta(t, -20.0, variant.DeltaPct["win_rate"], 0.001)
}

func TestBuildComparisonMatrixNegativeBaseline(t *testing.T) {
	scenarios := comparisonFixture()
	scenarios[0].Metrics.TotalPnL = -1000
	scenarios[1].Metrics.TotalPnL = -500

	rows := BuildComparisonMatrix(scenarios, []string{"total_pnl"})

	// delta-% is measured against the baseline magnitude
	require.InDelta(t, 500.0, rows[1].Delta["total_pnl"], 0.001)
	require.InDelta(t, 50.0, rows[1].DeltaPct["total_pnl"], 0.001)
}

func TestBuildComparisonMatrixZeroBaselineValue(t *testing.T) {
	scenarios := comparisonFixture()
	scenarios[0].Metrics.TotalPnL = 0

	rows := BuildComparisonMatrix(scenarios, []string{"total_pnl"})

	require.InDelta(t, 1500.0, rows[1].Delta["total_pnl"], 0.001)
	assert.Zero(t, rows[1].DeltaPct["total_pnl"])
}

func TestBuildComparisonMatrixSingleScenario(t *testing.T) {
	rows := BuildComparisonMatrix(comparisonFixture()[:1], nil)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Delta)
	assert.Nil(t, rows[0].DeltaPct)
}

func TestBuildComparisonMatrixNoBaseline(t *testing.T) {
	scenarios := comparisonFixture()
	scenarios[0].IsBaseline = false

	rows := BuildComparisonMatrix(scenarios, []string{"total_pnl"})
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Delta)
}

func TestBuildComparisonMatrixEmpty(t *testing.T) {
	assert.Nil(t, BuildComparisonMatrix(nil, nil))
}

func TestGenerateConsoleReport(t *testing.T) {
	rows := BuildComparisonMatrix(comparisonFixture(), []string{"total_pnl", "win_rate"})
	report := GenerateConsoleReport(rows)

	assert.Contains(t, report, "Baseline (Actual)")
	assert.Contains(t, report, "[baseline]")
	assert.Contains(t, report, "tight stop")
	assert.Contains(t, report, "Total P&L: 1000.00")
	assert.Contains(t, report, "P&L vs baseline: +500.00 (+50.00%)")
}

func TestGenerateCSVExport(t *testing.T) {
	rows := BuildComparisonMatrix(comparisonFixture(), []string{"total_pnl", "win_rate"})
	path := filepath.Join(t.TempDir(), "comparison.csv")

	require.NoError(t, GenerateCSVExport(rows, []string{"total_pnl", "win_rate"}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "total_pnl")
	assert.Contains(t, lines[1], "Baseline (Actual)")
}
