package scenario

import "math"

// DefaultComparisonKeys are the metric keys tabulated when the caller does
// not choose a subset.
var DefaultComparisonKeys = []string{
	"total_pnl", "win_rate", "sharpe_ratio", "profit_factor",
	"expectancy_dollar", "expectancy_r", "risk_of_ruin", "recovery_factor",
	"avg_win", "avg_loss", "avg_win_duration", "avg_loss_duration",
	"max_drawdown", "high_water_mark", "win_streak", "loss_streak",
	"trade_quality_score", "trades_per_day",
}

// ComparisonRow tabulates one scenario's metric values with deltas against
// the designated baseline.
type ComparisonRow struct {
	ScenarioName string             `json:"scenario_name"`
	IsBaseline   bool               `json:"is_baseline"`
	Values       map[string]float64 `json:"values"`
	Delta        map[string]float64 `json:"delta,omitempty"`
	DeltaPct     map[string]float64 `json:"delta_pct,omitempty"`
}

// BuildComparisonMatrix tabulates scenarios against the first baseline in
// the slice. With fewer than two scenarios no deltas are computed. A zero
// baseline value yields a delta-% of 0.
func BuildComparisonMatrix(scenarios []*Scenario, keys []string) []ComparisonRow {
	if len(scenarios) == 0 {
		return nil
	}
	if len(keys) == 0 {
		keys = DefaultComparisonKeys
	}

	rows := make([]ComparisonRow, 0, len(scenarios))
	for _, s := range scenarios {
		row := ComparisonRow{
			ScenarioName: s.Name,
			IsBaseline:   s.IsBaseline,
			Values:       make(map[string]float64, len(keys)),
		}
		for _, key := range keys {
			if v, ok := s.Metrics.Value(key); ok {
				row.Values[key] = v
			}
		}
		rows = append(rows, row)
	}

	if len(rows) < 2 {
		return rows
	}
	var baseline *ComparisonRow
	for i := range rows {
		if rows[i].IsBaseline {
			baseline = &rows[i]
			break
		}
	}
	if baseline == nil {
		return rows
	}

	for i := range rows {
		rows[i].Delta = make(map[string]float64, len(keys))
		rows[i].DeltaPct = make(map[string]float64, len(keys))
		for _, key := range keys {
			base := baseline.Values[key]
			delta := rows[i].Values[key] - base
			rows[i].Delta[key] = delta
			if base != 0 {
				rows[i].DeltaPct[key] = delta / math.Abs(base) * 100
			} else {
				rows[i].DeltaPct[key] = 0
			}
		}
	}
	return rows
}
