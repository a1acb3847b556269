package scenario

import (
	"sort"
	"time"

	"github.com/yourusername/whatif-futures/internal/models"
)

// exitDecision is the outcome of walking candles for one trade
type exitDecision struct {
	Price  float64
	Time   time.Time
	Reason models.ExitReason
}

// candleIndex groups candles per instrument, sorted by timestamp
type candleIndex map[string][]*models.Candle

func buildCandleIndex(candles []*models.Candle) candleIndex {
	index := make(candleIndex)
	for _, candle := range candles {
		index[candle.Instrument] = append(index[candle.Instrument], candle)
	}
	for instrument := range index {
		series := index[instrument]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Timestamp.Before(series[j].Timestamp)
		})
	}
	return index
}

// resolveExit walks the instrument's candles between entry and the exit-time
// ceiling and applies first-touch logic at bar granularity. Stop-loss is
// checked before take-profit within each candle. Exits happen at the
// configured level, not at the candle extreme. Missing market data degrades
// to the original exit and never errors.
func resolveExit(index candleIndex, trade *models.Trade, ceiling time.Time, stopPrice, targetPrice *float64) exitDecision {
	truncated := ceiling.Before(trade.ExitTime)

	if stopPrice == nil && targetPrice == nil && !truncated {
		return exitDecision{Price: trade.ExitPrice, Time: trade.ExitTime, Reason: models.ExitReasonOriginal}
	}

	fallbackPrice := trade.ExitPrice
	if fallbackPrice == 0 {
		fallbackPrice = trade.EntryPrice
	}

	series, ok := index[trade.Instrument]
	if !ok || len(series) == 0 {
		return exitDecision{Price: fallbackPrice, Time: ceiling, Reason: models.ExitReasonNoMarketData}
	}

	window := candlesBetween(series, trade.EntryTime, ceiling)
	if len(window) == 0 {
		return exitDecision{Price: fallbackPrice, Time: ceiling, Reason: models.ExitReasonNoCandles}
	}

	long := trade.Direction == models.DirectionLong
	for _, candle := range window {
		if stopPrice != nil && stopTouched(candle, *stopPrice, long) {
			return exitDecision{Price: *stopPrice, Time: candle.Timestamp, Reason: models.ExitReasonStopLoss}
		}
		if targetPrice != nil && targetTouched(candle, *targetPrice, long) {
			return exitDecision{Price: *targetPrice, Time: candle.Timestamp, Reason: models.ExitReasonTakeProfit}
		}
	}

	if truncated {
		last := window[len(window)-1]
		return exitDecision{Price: last.Close, Time: last.Timestamp, Reason: models.ExitReasonMaxHold}
	}
	return exitDecision{Price: trade.ExitPrice, Time: trade.ExitTime, Reason: models.ExitReasonOriginal}
}

func candlesBetween(series []*models.Candle, start, end time.Time) []*models.Candle {
	lo := sort.Search(len(series), func(i int) bool {
		return !series[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(series), func(i int) bool {
		return series[i].Timestamp.After(end)
	})
	if lo >= hi {
		return nil
	}
	return series[lo:hi]
}

func stopTouched(candle *models.Candle, stop float64, long bool) bool {
	if long {
		return candle.Low <= stop
	}
	return candle.High >= stop
}

func targetTouched(candle *models.Candle, target float64, long bool) bool {
	if long {
		return candle.High >= target
	}
	return candle.Low <= target
}
