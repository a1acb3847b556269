// Package analytics computes performance metrics over closed futures trades.
package analytics

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/whatif-futures/internal/models"
)

// DefaultStartingCapital is assumed when the caller supplies no capital
const DefaultStartingCapital = 50000.0

// Metrics represents the full battery of performance metrics for a trade set
type Metrics struct {
	TotalPnL             float64 `json:"total_pnl"`
	WinRate              float64 `json:"win_rate"`
	ProfitFactor         float64 `json:"profit_factor"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	ExpectancyDollar     float64 `json:"expectancy_dollar"`
	ExpectancyR          float64 `json:"expectancy_r"`
	RiskOfRuin           float64 `json:"risk_of_ruin"`
	RecoveryFactor       float64 `json:"recovery_factor"`
	AvgWin               float64 `json:"avg_win"`
	AvgLoss              float64 `json:"avg_loss"`
	AvgWinDuration       float64 `json:"avg_win_duration"`
	AvgLossDuration      float64 `json:"avg_loss_duration"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct"`
	HighWaterMark        float64 `json:"high_water_mark"`
	WinStreak            int     `json:"win_streak"`
	LossStreak           int     `json:"loss_streak"`
	TradeQualityScore    float64 `json:"trade_quality_score"`
	TradesPerDay         float64 `json:"trades_per_day"`
	TotalTrades          int     `json:"total_trades"`
	NumWins              int     `json:"num_wins"`
	NumLosses            int     `json:"num_losses"`
	GrossProfit          float64 `json:"gross_profit"`
	GrossLoss            float64 `json:"gross_loss"`
	DrawdownDurationDays int     `json:"drawdown_duration_days"`
}

// CalculateAllMetrics computes every metric for a set of closed trades.
// An empty trade set yields the zero-valued record. Input is never mutated.
func CalculateAllMetrics(trades []*models.Trade, startingCapital float64) Metrics {
	if startingCapital <= 0 {
		startingCapital = DefaultStartingCapital
	}
	if len(trades) == 0 {
		return Metrics{}
	}

	totalTrades := len(trades)
	numWins := 0
	numLosses := 0
	totalPnL := 0.0
	grossProfit := 0.0
	grossLoss := 0.0
	winDurationSum := 0.0
	lossDurationSum := 0.0
	rSum := 0.0

	for _, trade := range trades {
		totalPnL += trade.PnL
		rSum += trade.RMultiple
		if trade.PnL > 0 {
			numWins++
			grossProfit += trade.PnL
			winDurationSum += trade.HoldingMinutes()
		} else if trade.PnL < 0 {
			numLosses++
			grossLoss += math.Abs(trade.PnL)
			lossDurationSum += trade.HoldingMinutes()
		}
	}

	winRate := float64(numWins) / float64(totalTrades) * 100

	profitFactor := 0.0
	if grossLoss > 0 {
		profitFactor = grossProfit / grossLoss
	}

	avgWin := 0.0
	avgWinDuration := 0.0
	if numWins > 0 {
		avgWin = grossProfit / float64(numWins)
		avgWinDuration = winDurationSum / float64(numWins)
	}
	avgLoss := 0.0
	avgLossDuration := 0.0
	if numLosses > 0 {
		avgLoss = -grossLoss / float64(numLosses)
		avgLossDuration = lossDurationSum / float64(numLosses)
	}

	winProb := winRate / 100
	expectancyDollar := winProb*avgWin + (1-winProb)*avgLoss
	expectancyR := rSum / float64(totalTrades)

	riskOfRuin := CalculateRiskOfRuin(winProb, avgWin, math.Abs(avgLoss), startingCapital)

	sorted := sortByExitTime(trades)

	// high-water mark is the running max of the equity series, so the
	// first trade is never underwater
	equity := startingCapital
	highWaterMark := math.Inf(-1)
	maxDrawdown := 0.0
	returns := make([]float64, 0, totalTrades)
	for _, trade := range sorted {
		equity += trade.PnL
		if equity > highWaterMark {
			highWaterMark = equity
		}
		if dd := highWaterMark - equity; dd > maxDrawdown {
			maxDrawdown = dd
		}
		returns = append(returns, trade.PnL/startingCapital)
	}
	maxDrawdownPct := maxDrawdown / startingCapital * 100

	recoveryFactor := 0.0
	if maxDrawdown > 0 {
		recoveryFactor = totalPnL / maxDrawdown
	}

	sharpe := CalculateSharpeRatio(returns, 0, 252)
	winStreak, lossStreak := calculateStreaks(sorted)
	qualityScore := CalculateTradeQualityScore(sharpe, expectancyR, profitFactor)
	drawdownDuration := calculateDrawdownDuration(sorted, startingCapital)

	return Metrics{
		TotalPnL:             round2(totalPnL),
		WinRate:              round2(winRate),
		ProfitFactor:         round2(profitFactor),
		SharpeRatio:          round2(sharpe),
		ExpectancyDollar:     round2(expectancyDollar),
		ExpectancyR:          round2(expectancyR),
		RiskOfRuin:           round2(riskOfRuin),
		RecoveryFactor:       round2(recoveryFactor),
		AvgWin:               round2(avgWin),
		AvgLoss:              round2(avgLoss),
		AvgWinDuration:       round2(avgWinDuration),
		AvgLossDuration:      round2(avgLossDuration),
		MaxDrawdown:          round2(maxDrawdown),
		MaxDrawdownPct:       round2(maxDrawdownPct),
		HighWaterMark:        round2(highWaterMark),
		WinStreak:            winStreak,
		LossStreak:           lossStreak,
		TradeQualityScore:    round2(qualityScore),
		TradesPerDay:         round2(tradesPerDay(sorted)),
		TotalTrades:          totalTrades,
		NumWins:              numWins,
		NumLosses:            numLosses,
		GrossProfit:          round2(grossProfit),
		GrossLoss:            round2(grossLoss),
		DrawdownDurationDays: drawdownDuration,
	}
}

// CalculateSharpeRatio computes an annualized Sharpe ratio on per-trade
// returns. Trades are treated as periods, not annualized by calendar time.
func CalculateSharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	perPeriodRate := riskFreeRate / periodsPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - perPeriodRate
	}
	std := sampleStddev(excess)
	if std == 0 {
		return 0
	}
	return average(excess) / std * math.Sqrt(periodsPerYear)
}

// CalculateRiskOfRuin estimates the probability (0-100) of exhausting
// capital from win probability and payoff ratio. avgLoss is a magnitude.
func CalculateRiskOfRuin(winProb, avgWin, avgLoss, capital float64) float64 {
	if avgLoss == 0 || winProb == 0 {
		return 0
	}
	payoffRatio := 0.0
	if avgLoss > 0 {
		payoffRatio = avgWin / avgLoss
	}
	if payoffRatio == 0 {
		return 100
	}
	if winProb >= 1 {
		return 0
	}

	q := 1 - winProb
	exponent := capital / avgLoss
	var ror float64
	if payoffRatio == 1 {
		ror = math.Pow(q/winProb, exponent)
	} else {
		ror = math.Pow(q/winProb*payoffRatio, exponent)
	}
	if math.IsNaN(ror) {
		return 0
	}
	return math.Min(math.Max(ror*100, 0), 100)
}

// CalculateTradeQualityScore combines Sharpe, R expectancy and profit factor
// into a 0-100 composite, each component capped at a third of the scale.
func CalculateTradeQualityScore(sharpe, expectancyR, profitFactor float64) float64 {
	score := 0.0
	if sharpe > 0 {
		score += math.Min(sharpe/3*33.33, 33.33)
	}
	if expectancyR > 0 {
		score += math.Min(expectancyR/2*33.33, 33.33)
	}
	if profitFactor > 1 {
		score += math.Min((profitFactor-1)/2*33.33, 33.33)
	}
	return score
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

// ToMap exposes metrics keyed the way they are persisted and compared
func (m Metrics) ToMap() map[string]float64 {
	return map[string]float64{
		"total_pnl":              m.TotalPnL,
		"win_rate":               m.WinRate,
		"profit_factor":          m.ProfitFactor,
		"sharpe_ratio":           m.SharpeRatio,
		"expectancy_dollar":      m.ExpectancyDollar,
		"expectancy_r":           m.ExpectancyR,
		"risk_of_ruin":           m.RiskOfRuin,
		"recovery_factor":        m.RecoveryFactor,
		"avg_win":                m.AvgWin,
		"avg_loss":               m.AvgLoss,
		"avg_win_duration":       m.AvgWinDuration,
		"avg_loss_duration":      m.AvgLossDuration,
		"max_drawdown":           m.MaxDrawdown,
		"max_drawdown_pct":       m.MaxDrawdownPct,
		"high_water_mark":        m.HighWaterMark,
		"win_streak":             float64(m.WinStreak),
		"loss_streak":            float64(m.LossStreak),
		"trade_quality_score":    m.TradeQualityScore,
		"trades_per_day":         m.TradesPerDay,
		"total_trades":           float64(m.TotalTrades),
		"num_wins":               float64(m.NumWins),
		"num_losses":             float64(m.NumLosses),
		"gross_profit":           m.GrossProfit,
		"gross_loss":             m.GrossLoss,
		"drawdown_duration_days": float64(m.DrawdownDurationDays),
	}
}

// Value looks up a metric by its persisted key
func (m Metrics) Value(key string) (float64, bool) {
	v, ok := m.ToMap()[key]
	return v, ok
}

func calculateStreaks(sorted []*models.Trade) (int, int) {
	maxWin, maxLoss := 0, 0
	curWin, curLoss := 0, 0
	for _, trade := range sorted {
		if trade.PnL > 0 {
			curWin++
			curLoss = 0
			if curWin > maxWin {
				maxWin = curWin
			}
		} else {
			// breakeven trades extend the losing streak
			curLoss++
			curWin = 0
			if curLoss > maxLoss {
				maxLoss = curLoss
			}
		}
	}
	return maxWin, maxLoss
}

func calculateDrawdownDuration(sorted []*models.Trade, startingCapital float64) int {
	equity := startingCapital
	highWaterMark := math.Inf(-1)
	maxDuration := 0
	current := 0
	var prevDate time.Time
	havePrev := false

	for _, trade := range sorted {
		equity += trade.PnL
		if equity > highWaterMark {
			highWaterMark = equity
		}
		exitDate := truncateToDate(trade.ExitTime)
		if equity < highWaterMark {
			if !havePrev {
				current = 1
			} else {
				days := int(exitDate.Sub(prevDate).Hours() / 24)
				if days < 1 {
					days = 1
				}
				current += days
			}
			if current > maxDuration {
				maxDuration = current
			}
		} else {
			current = 0
		}
		prevDate = exitDate
		havePrev = true
	}
	return maxDuration
}

func tradesPerDay(sorted []*models.Trade) float64 {
	if len(sorted) == 0 {
		return 0
	}
	counts := make(map[time.Time]int)
	for _, trade := range sorted {
		counts[truncateToDate(trade.ExitTime)]++
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return float64(total) / float64(len(counts))
}

func sortByExitTime(trades []*models.Trade) []*models.Trade {
	sorted := make([]*models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExitTime.Before(sorted[j].ExitTime)
	})
	return sorted
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
