package analytics

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/yourusername/whatif-futures/internal/models"
)

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	ExitTime      time.Time `json:"exit_time"`
	Equity        float64   `json:"equity"`
	HighWaterMark float64   `json:"high_water_mark"`
	Drawdown      float64   `json:"drawdown"`
	DrawdownPct   float64   `json:"drawdown_pct"`
}

// EquityCurve represents a per-trade time series of account equity
type EquityCurve []EquityPoint

// GetEquityCurve builds the cumulative equity series for trades ordered by
// exit time. Drawdown is measured against the running high-water mark.
func GetEquityCurve(trades []*models.Trade, startingCapital float64) EquityCurve {
	if startingCapital <= 0 {
		startingCapital = DefaultStartingCapital
	}
	if len(trades) == 0 {
		return EquityCurve{}
	}

	sorted := sortByExitTime(trades)
	curve := make(EquityCurve, 0, len(sorted))
	equity := startingCapital
	highWaterMark := 0.0

	for i, trade := range sorted {
		equity += trade.PnL
		if i == 0 || equity > highWaterMark {
			highWaterMark = equity
		}
		drawdown := equity - highWaterMark
		drawdownPct := 0.0
		if highWaterMark > 0 {
			drawdownPct = drawdown / highWaterMark * 100
		}
		curve = append(curve, EquityPoint{
			ExitTime:      trade.ExitTime,
			Equity:        equity,
			HighWaterMark: highWaterMark,
			Drawdown:      drawdown,
			DrawdownPct:   drawdownPct,
		})
	}
	return curve
}

// FinalEquity returns the last equity value, or 0 for an empty curve
func (e EquityCurve) FinalEquity() float64 {
	if len(e) == 0 {
		return 0
	}
	return e[len(e)-1].Equity
}

// ToCSV exports the equity curve to a CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("exit_time,equity,high_water_mark,drawdown,drawdown_pct\n")
	for _, point := range e {
		buf.WriteString(point.ExitTime.Format(time.RFC3339))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Equity))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.HighWaterMark))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Drawdown))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.DrawdownPct))
		buf.WriteString("\n")
	}
	return buf.String()
}

// ToJSON exports the equity curve to a JSON string
func (e EquityCurve) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
