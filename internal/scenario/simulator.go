package scenario

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/whatif-futures/internal/analytics"
	"github.com/yourusername/whatif-futures/internal/metrics"
	"github.com/yourusername/whatif-futures/internal/models"
)

// Simulator re-simulates trade exits under scenario rules. It holds no state
// between calls and may be shared across concurrent scenario runs.
type Simulator struct {
	logger *logrus.Logger
}

// NewSimulator creates a scenario simulator
func NewSimulator(logger *logrus.Logger) *Simulator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Simulator{logger: logger}
}

// ApplyScenario transforms the original trades under the given parameters
// and computes metrics for the result. Input slices are never mutated.
// Trades dropped by a filter are removed entirely from the output.
func (s *Simulator) ApplyScenario(trades []*models.Trade, candles []*models.Candle, params Parameters, startingCapital float64) ([]*models.Trade, analytics.Metrics, error) {
	if err := params.Validate(); err != nil {
		return nil, analytics.Metrics{}, err
	}
	params = params.normalized()

	if startingCapital <= 0 {
		startingCapital = analytics.DefaultStartingCapital
	}
	effectiveCapital := startingCapital * params.CapitalMultiplier

	if len(trades) == 0 {
		return []*models.Trade{}, analytics.Metrics{}, nil
	}

	index := buildCandleIndex(candles)
	shares := instrumentShares(trades, params.InstrumentSplitPct)
	excluded := make(map[string]bool, len(params.ExcludeDays))
	for _, day := range params.ExcludeDays {
		excluded[day] = true
	}

	survivors := make([]*models.Trade, 0, len(trades))
	for _, trade := range trades {
		if excluded[trade.EntryTime.Weekday().String()] {
			continue
		}
		if !withinTradeHours(trade.EntryTime, params.TradeHoursStart, params.TradeHoursEnd) {
			continue
		}
		if params.MinHoldMinutes != nil && trade.HoldingMinutes() < *params.MinHoldMinutes {
			continue
		}
		survivors = append(survivors, trade)
	}
	if params.MaxConcurrentPositions != nil {
		survivors = capConcurrency(survivors, *params.MaxConcurrentPositions, params.MaxHoldMinutes)
	}

	modified := make([]*models.Trade, 0, len(survivors))
	for _, original := range survivors {
		modified = append(modified, s.simulateTrade(original, index, params, effectiveCapital, shares))
	}

	metrics := analytics.CalculateAllMetrics(modified, effectiveCapital)

	s.logger.WithFields(logrus.Fields{
		"input_trades":  len(trades),
		"output_trades": len(modified),
		"total_pnl":     metrics.TotalPnL,
	}).Debug("Scenario applied")

	return modified, metrics, nil
}

func (s *Simulator) simulateTrade(original *models.Trade, index candleIndex, params Parameters, effectiveCapital float64, shares map[string]float64) *models.Trade {
	trade := original.Clone()
	spec := models.SpecFor(trade.Instrument)

	capitalForTrade := effectiveCapital * (params.CapitalAllocationPct / 100) * shares[trade.Instrument]
	contracts := int(capitalForTrade / spec.MarginInitial)
	if contracts < 1 {
		contracts = 1
	}
	trade.Contracts = contracts

	ceiling := original.ExitTime
	if params.MaxHoldMinutes != nil && original.HoldingMinutes() > *params.MaxHoldMinutes {
		ceiling = original.EntryTime.Add(time.Duration(*params.MaxHoldMinutes * float64(time.Minute)))
	}

	stopPrice, targetPrice := exitLevels(original, params)
	decision := resolveExit(index, original, ceiling, stopPrice, targetPrice)

	trade.ExitPrice = decision.Price
	trade.ExitTime = decision.Time
	trade.ExitReason = decision.Reason

	if decision.Reason == models.ExitReasonNoMarketData || decision.Reason == models.ExitReasonNoCandles {
		metrics.RecordExitFallback(string(decision.Reason))
		s.logger.WithFields(logrus.Fields{
			"trade_id":   original.ID,
			"instrument": original.Instrument,
			"reason":     string(decision.Reason),
		}).Debug("Exit resimulation fell back to recorded exit")
	}

	entryPrice := original.EntryPrice
	exitPrice := decision.Price
	slippageCost := 0.0
	if params.SlippageTicks > 0 {
		adjustment := float64(params.SlippageTicks) * spec.TickSize
		if trade.Direction == models.DirectionLong {
			entryPrice += adjustment
			exitPrice -= adjustment
		} else {
			entryPrice -= adjustment
			exitPrice += adjustment
		}
		slippageCost = 2 * adjustment * spec.PointValue * float64(contracts)
	}
	commissionCost := params.CommissionPerContract * float64(contracts)

	var pnl float64
	if trade.Direction == models.DirectionLong {
		pnl = (exitPrice - entryPrice) * spec.PointValue * float64(contracts)
	} else {
		pnl = (entryPrice - exitPrice) * spec.PointValue * float64(contracts)
	}
	pnl -= commissionCost

	trade.EntryPrice = entryPrice
	trade.ExitPrice = exitPrice
	trade.SlippageCost = roundMoney(slippageCost)
	trade.CommissionCost = roundMoney(commissionCost)
	trade.PnL = roundMoney(pnl)
	trade.Outcome = models.OutcomeFromPnL(trade.PnL)
	if original.InitialRisk != 0 {
		trade.RMultiple = roundMoney(trade.PnL / math.Abs(original.InitialRisk))
	} else {
		trade.RMultiple = 0
	}

	return trade
}

// exitLevels derives stop and target prices from the entry price
func exitLevels(trade *models.Trade, params Parameters) (*float64, *float64) {
	var stop, target *float64
	if params.StopLossPct != nil {
		level := trade.EntryPrice * (1 - *params.StopLossPct/100)
		if trade.Direction == models.DirectionShort {
			level = trade.EntryPrice * (1 + *params.StopLossPct/100)
		}
		stop = &level
	}
	if params.TakeProfitPct != nil {
		level := trade.EntryPrice * (1 + *params.TakeProfitPct/100)
		if trade.Direction == models.DirectionShort {
			level = trade.EntryPrice * (1 - *params.TakeProfitPct/100)
		}
		target = &level
	}
	return stop, target
}

// withinTradeHours checks the entry's decimal hour against an inclusive
// window. A window with start > end wraps past midnight.
func withinTradeHours(entry time.Time, start, end *float64) bool {
	if start == nil || end == nil {
		return true
	}
	hour := float64(entry.Hour()) + float64(entry.Minute())/60 + float64(entry.Second())/3600
	if *start <= *end {
		return hour >= *start && hour <= *end
	}
	return hour >= *start || hour <= *end
}

// capConcurrency walks trades in entry order and drops any trade that would
// exceed the limit of simultaneously open positions. Open windows account
// for max-hold truncation since that is when the position would close.
func capConcurrency(trades []*models.Trade, limit int, maxHoldMinutes *float64) []*models.Trade {
	ordered := make([]*models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EntryTime.Before(ordered[j].EntryTime)
	})

	kept := make([]*models.Trade, 0, len(ordered))
	open := make([]time.Time, 0, limit)
	for _, trade := range ordered {
		closeTime := trade.ExitTime
		if maxHoldMinutes != nil && trade.HoldingMinutes() > *maxHoldMinutes {
			closeTime = trade.EntryTime.Add(time.Duration(*maxHoldMinutes * float64(time.Minute)))
		}

		active := open[:0]
		for _, t := range open {
			if t.After(trade.EntryTime) {
				active = append(active, t)
			}
		}
		open = active

		if len(open) >= limit {
			continue
		}
		open = append(open, closeTime)
		kept = append(kept, trade)
	}
	return kept
}

// instrumentShares resolves per-instrument capital allocation shares. With
// no explicit split every instrument in the trade set gets an equal share.
func instrumentShares(trades []*models.Trade, splitPct map[string]float64) map[string]float64 {
	instruments := make(map[string]bool)
	for _, trade := range trades {
		instruments[trade.Instrument] = true
	}

	shares := make(map[string]float64, len(instruments))
	if len(splitPct) > 0 {
		for instrument := range instruments {
			shares[instrument] = splitPct[instrument] / 100
		}
		return shares
	}

	equal := 1.0 / float64(len(instruments))
	for instrument := range instruments {
		shares[instrument] = equal
	}
	return shares
}

func roundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Describe summarizes the non-neutral parameters for logs and reports
func Describe(params Parameters) string {
	parts := make([]string, 0, 8)
	if params.StopLossPct != nil {
		parts = append(parts, fmt.Sprintf("Stop Loss: %.2f%%", *params.StopLossPct))
	}
	if params.TakeProfitPct != nil {
		parts = append(parts, fmt.Sprintf("Take Profit: %.2f%%", *params.TakeProfitPct))
	}
	if params.MinHoldMinutes != nil {
		parts = append(parts, fmt.Sprintf("Min Hold: %.0f min", *params.MinHoldMinutes))
	}
	if params.MaxHoldMinutes != nil {
		parts = append(parts, fmt.Sprintf("Max Hold: %.0f min", *params.MaxHoldMinutes))
	}
	if len(params.ExcludeDays) > 0 {
		parts = append(parts, fmt.Sprintf("Exclude: %s", strings.Join(params.ExcludeDays, ", ")))
	}
	if params.TradeHoursStart != nil && params.TradeHoursEnd != nil {
		parts = append(parts, fmt.Sprintf("Hours: %.2f-%.2f", *params.TradeHoursStart, *params.TradeHoursEnd))
	}
	if params.SlippageTicks > 0 {
		parts = append(parts, fmt.Sprintf("Slippage: %d ticks", params.SlippageTicks))
	}
	if params.CommissionPerContract > 0 {
		parts = append(parts, fmt.Sprintf("Commission: %.2f/contract", params.CommissionPerContract))
	}
	if len(parts) == 0 {
		return "Baseline"
	}
	return strings.Join(parts, ", ")
}
