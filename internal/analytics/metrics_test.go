package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/whatif-futures/internal/models"
)

var analyticsBaseTime = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func newClosedTrade(pnl, rMultiple float64, entry, exit time.Time) *models.Trade {
	return &models.Trade{
		ID:          uuid.New(),
		PortfolioID: uuid.New(),
		Instrument:  "MES",
		Direction:   models.DirectionLong,
		EntryTime:   entry,
		ExitTime:    exit,
		EntryPrice:  5000,
		ExitPrice:   5000 + pnl/5,
		Contracts:   1,
		PnL:         pnl,
		RMultiple:   rMultiple,
		Outcome:     models.OutcomeFromPnL(pnl),
	}
}

func threeTradeSample() []*models.Trade {
	day1 := analyticsBaseTime
	day2 := analyticsBaseTime.Add(24 * time.Hour)
	return []*models.Trade{
		newClosedTrade(300, 1.5, day1.Add(-60*time.Minute), day1),
		newClosedTrade(-100, -1.0, day1.Add(90*time.Minute), day1.Add(120*time.Minute)),
		newClosedTrade(300, 1.5, day2.Add(-60*time.Minute), day2),
	}
}

func TestCalculateAllMetricsWorkedExample(t *testing.T) {
	m := CalculateAllMetrics(threeTradeSample(), 50000)

	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 2, m.NumWins)
	assert.Equal(t, 1, m.NumLosses)
	require.InDelta(t, 500.0, m.TotalPnL, 0.001)
	require.InDelta(t, 66.67, m.WinRate, 0.001)
	require.InDelta(t, 6.0, m.ProfitFactor, 0.001)
	require.InDelta(t, 600.0, m.GrossProfit, 0.001)
	require.InDelta(t, 100.0, m.GrossLoss, 0.001)
	require.InDelta(t, 300.0, m.AvgWin, 0.001)
	require.InDelta(t, -100.0, m.AvgLoss, 0.001)
	require.InDelta(t, 166.67, m.ExpectancyDollar, 0.01)
	require.InDelta(t, 0.67, m.ExpectancyR, 0.001)
	require.InDelta(t, 60.0, m.AvgWinDuration, 0.001)
	require.InDelta(t, 30.0, m.AvgLossDuration, 0.001)
}

func TestCalculateAllMetricsEquityDerived(t *testing.T) {
	m := CalculateAllMetrics(threeTradeSample(), 50000)

	// equity path: 50300, 50200, 50500
	require.InDelta(t, 100.0, m.MaxDrawdown, 0.001)
	require.InDelta(t, 0.2, m.MaxDrawdownPct, 0.001)
	require.InDelta(t, 50500.0, m.HighWaterMark, 0.001)
	require.InDelta(t, 5.0, m.RecoveryFactor, 0.001)
	assert.Equal(t, 1, m.WinStreak)
	assert.Equal(t, 1, m.LossStreak)
	require.InDelta(t, 11.46, m.SharpeRatio, 0.01)
	require.InDelta(t, 1.5, m.TradesPerDay, 0.001)
}

func TestCalculateAllMetricsEmpty(t *testing.T) {
	m := CalculateAllMetrics(nil, 50000)
	assert.Equal(t, Metrics{}, m)
}

func TestCalculateAllMetricsDefaultsCapital(t *testing.T) {
	withDefault := CalculateAllMetrics(threeTradeSample(), 0)
	withExplicit := CalculateAllMetrics(threeTradeSample(), DefaultStartingCapital)
	assert.Equal(t, withExplicit, withDefault)
}

func TestCalculateAllMetricsDoesNotMutateInput(t *testing.T) {
	trades := threeTradeSample()
	// deliberately out of exit-time order
	trades[0], trades[2] = trades[2], trades[0]
	first := trades[0].ID

	CalculateAllMetrics(trades, 50000)

	assert.Equal(t, first, trades[0].ID)
}

func TestBreakevenExtendsLossStreak(t *testing.T) {
	exit := analyticsBaseTime
	trades := []*models.Trade{
		newClosedTrade(-50, -1.0, exit.Add(-30*time.Minute), exit),
		newClosedTrade(0, 0, exit.Add(30*time.Minute), exit.Add(60*time.Minute)),
		newClosedTrade(-50, -1.0, exit.Add(90*time.Minute), exit.Add(120*time.Minute)),
	}

	m := CalculateAllMetrics(trades, 50000)

	assert.Equal(t, 3, m.LossStreak)
	assert.Equal(t, 0, m.WinStreak)
	assert.Equal(t, 2, m.NumLosses, "breakeven counts in neither wins nor losses")
	assert.Equal(t, 0, m.NumWins)
}

func TestCalculateRiskOfRuin(t *testing.T) {
	tests := []struct {
		name     string
		winProb  float64
		avgWin   float64
		avgLoss  float64
		capital  float64
		expected float64
	}{
		{"no losses recorded", 0.6, 200, 0, 50000, 0},
		{"never wins", 0, 0, 100, 50000, 0},
		{"zero payoff", 0.6, 0, 100, 50000, 100},
		{"always wins", 1.0, 200, 100, 50000, 0},
		{"favorable small payoff", 0.67, 100, 300, 50000, 0},
		{"edge decays to zero", 0.8, 100, 100, 10000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRiskOfRuin(tt.winProb, tt.avgWin, tt.avgLoss, tt.capital)
			require.InDelta(t, tt.expected, got, 0.001)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestCalculateSharpeRatio(t *testing.T) {
	assert.Zero(t, CalculateSharpeRatio(nil, 0, 252))
	assert.Zero(t, CalculateSharpeRatio([]float64{0.01}, 0, 252))
	assert.Zero(t, CalculateSharpeRatio([]float64{0.01, 0.01, 0.01}, 0, 252), "zero variance yields zero")

	got := CalculateSharpeRatio([]float64{0.006, -0.002, 0.006}, 0, 252)
	require.InDelta(t, 11.456, got, 0.01)
}

func TestCalculateTradeQualityScore(t *testing.T) {
	assert.Zero(t, CalculateTradeQualityScore(0, 0, 1))
	assert.Zero(t, CalculateTradeQualityScore(-1, -0.5, 0.8))

	// each component caps at a third of the scale
	require.InDelta(t, 99.99, CalculateTradeQualityScore(10, 10, 10), 0.001)

	partial := CalculateTradeQualityScore(1.5, 0, 0)
	require.InDelta(t, 16.665, partial, 0.001)
}

func TestDrawdownDurationDays(t *testing.T) {
	start := analyticsBaseTime
	trades := []*models.Trade{
		newClosedTrade(500, 1.0, start.Add(-60*time.Minute), start),
		newClosedTrade(-200, -1.0, start.Add(23*time.Hour), start.Add(24*time.Hour)),
		newClosedTrade(-100, -1.0, start.Add(47*time.Hour), start.Add(48*time.Hour)),
		newClosedTrade(400, 1.0, start.Add(71*time.Hour), start.Add(72*time.Hour)),
	}

	m := CalculateAllMetrics(trades, 50000)

	// underwater from day 2 through day 3, recovered on day 4
	assert.Equal(t, 2, m.DrawdownDurationDays)
}

func TestMetricsLeadingLossHighWaterMark(t *testing.T) {
	start := analyticsBaseTime
	trades := []*models.Trade{
		newClosedTrade(-100, -1.0, start.Add(-60*time.Minute), start),
		newClosedTrade(200, 2.0, start.Add(23*time.Hour), start.Add(24*time.Hour)),
		newClosedTrade(-50, -0.5, start.Add(47*time.Hour), start.Add(48*time.Hour)),
	}

	m := CalculateAllMetrics(trades, 50000)

	// the first equity point is its own high-water mark, so the opening
	// loss carries no drawdown
	require.InDelta(t, 50100.0, m.HighWaterMark, 0.001)
	require.InDelta(t, 50.0, m.MaxDrawdown, 0.001)
	require.InDelta(t, 0.1, m.MaxDrawdownPct, 0.001)
	assert.Equal(t, 1, m.DrawdownDurationDays)
}

func TestMetricsAllLosersDrawdown(t *testing.T) {
	start := analyticsBaseTime
	trades := []*models.Trade{
		newClosedTrade(-100, -1.0, start.Add(-60*time.Minute), start),
		newClosedTrade(-50, -0.5, start.Add(23*time.Hour), start.Add(24*time.Hour)),
	}

	m := CalculateAllMetrics(trades, 50000)

	require.InDelta(t, 49900.0, m.HighWaterMark, 0.001)
	require.InDelta(t, 50.0, m.MaxDrawdown, 0.001)
	assert.Equal(t, 1, m.DrawdownDurationDays)
}

func TestMetricsValueLookup(t *testing.T) {
	m := CalculateAllMetrics(threeTradeSample(), 50000)

	v, ok := m.Value("profit_factor")
	require.True(t, ok)
	require.InDelta(t, 6.0, v, 0.001)

	_, ok = m.Value("nonexistent_metric")
	assert.False(t, ok)
}
