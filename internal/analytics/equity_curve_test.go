package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/whatif-futures/internal/models"
)

func TestGetEquityCurve(t *testing.T) {
	curve := GetEquityCurve(threeTradeSample(), 50000)
	require.Len(t, curve, 3)

	require.InDelta(t, 50300.0, curve[0].Equity, 0.001)
	require.InDelta(t, 50200.0, curve[1].Equity, 0.001)
	require.InDelta(t, 50500.0, curve[2].Equity, 0.001)

	// high-water mark never decreases
	for i := 1; i < len(curve); i++ {
		assert.GreaterOrEqual(t, curve[i].HighWaterMark, curve[i-1].HighWaterMark)
	}

	// drawdown is equity minus running peak, never positive
	for _, point := range curve {
		assert.LessOrEqual(t, point.Drawdown, 0.0)
		require.InDelta(t, point.Equity-point.HighWaterMark, point.Drawdown, 0.0001)
	}

	require.InDelta(t, -100.0, curve[1].Drawdown, 0.001)
	require.InDelta(t, 50500.0, curve.FinalEquity(), 0.001)
}

func TestGetEquityCurveLeadingLoss(t *testing.T) {
	start := analyticsBaseTime
	trades := []*models.Trade{
		newClosedTrade(-100, -1.0, start.Add(-60*time.Minute), start),
		newClosedTrade(-50, -0.5, start.Add(23*time.Hour), start.Add(24*time.Hour)),
	}

	curve := GetEquityCurve(trades, 50000)
	require.Len(t, curve, 2)

	// the opening trade sets the first high-water mark, so it starts flat
	require.InDelta(t, 49900.0, curve[0].Equity, 0.001)
	require.InDelta(t, 49900.0, curve[0].HighWaterMark, 0.001)
	require.InDelta(t, 0.0, curve[0].Drawdown, 0.001)

	require.InDelta(t, 49900.0, curve[1].HighWaterMark, 0.001)
	require.InDelta(t, -50.0, curve[1].Drawdown, 0.001)
}

func TestGetEquityCurveOrdersByExitTime(t *testing.T) {
	trades := threeTradeSample()
	trades[0], trades[2] = trades[2], trades[0]

	curve := GetEquityCurve(trades, 50000)
	require.Len(t, curve, 3)
	for i := 1; i < len(curve); i++ {
		assert.False(t, curve[i].ExitTime.Before(curve[i-1].ExitTime))
	}
}

func TestGetEquityCurveEmpty(t *testing.T) {
	curve := GetEquityCurve(nil, 50000)
	assert.Empty(t, curve)
	assert.Zero(t, curve.FinalEquity())
}

func TestEquityCurveToCSV(t *testing.T) {
	curve := GetEquityCurve(threeTradeSample(), 50000)
	csv := curve.ToCSV()

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "exit_time,equity,high_water_mark,drawdown,drawdown_pct", lines[0])
	assert.Contains(t, lines[1], "50300.000000")
}

func TestGetTimeOfDayPerformance(t *testing.T) {
	entry := time.Date(2025, 3, 10, 9, 45, 0, 0, time.UTC)
	trades := []*models.Trade{
		newClosedTrade(100, 1.0, entry, entry.Add(30*time.Minute)),
		newClosedTrade(-50, -0.5, entry.Add(5*time.Minute), entry.Add(40*time.Minute)),
		newClosedTrade(200, 2.0, entry.Add(3*time.Hour), entry.Add(4*time.Hour)),
	}

	hourly := GetTimeOfDayPerformance(trades)
	require.Len(t, hourly, 2)

	assert.Equal(t, 9, hourly[0].Hour)
	assert.Equal(t, 2, hourly[0].NumTrades)
	require.InDelta(t, 50.0, hourly[0].TotalPnL, 0.001)
	require.InDelta(t, 50.0, hourly[0].WinRate, 0.001)

	assert.Equal(t, 12, hourly[1].Hour)
	require.InDelta(t, 200.0, hourly[1].AvgPnL, 0.001)
}

func TestGetMonthlyReturns(t *testing.T) {
	march := time.Date(2025, 3, 5, 15, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	trades := []*models.Trade{
		newClosedTrade(100, 1.0, march.Add(-time.Hour), march),
		newClosedTrade(150, 1.0, march.Add(23*time.Hour), march.Add(24*time.Hour)),
		newClosedTrade(-75, -1.0, april.Add(-time.Hour), april),
	}

	monthly := GetMonthlyReturns(trades)
	require.Len(t, monthly, 2)

	assert.Equal(t, "Mar", monthly[0].MonthName)
	require.InDelta(t, 250.0, monthly[0].PnL, 0.001)
	assert.Equal(t, "Apr", monthly[1].MonthName)
	require.InDelta(t, -75.0, monthly[1].PnL, 0.001)
}

func TestGetWeeklyPnL(t *testing.T) {
	monday := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	trades := []*models.Trade{
		newClosedTrade(100, 1.0, monday.Add(-time.Hour), monday),
		newClosedTrade(50, 0.5, monday.Add(time.Hour), monday.Add(2*time.Hour)),
		newClosedTrade(-25, -0.5, monday.Add(24*time.Hour), monday.Add(25*time.Hour)),
	}

	daily := GetWeeklyPnL(trades)
	require.Len(t, daily, 2)

	assert.Equal(t, "Monday", daily[0].Weekday)
	require.InDelta(t, 150.0, daily[0].PnL, 0.001)
	assert.Equal(t, "Tuesday", daily[1].Weekday)
	assert.Equal(t, daily[0].Week, daily[1].Week)
}
