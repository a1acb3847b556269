// Package generator produces synthetic trades and candles for local
// experimentation without a market-data subscription.
package generator

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/whatif-futures/internal/models"
)

// Generator produces deterministic synthetic market data from a seed
type Generator struct {
	rng *rand.Rand
}

// New creates a generator with the given seed
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// sessionOpen returns 09:30 UTC on the given day
func sessionOpen(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 9, 30, 0, 0, time.UTC)
}

// sessionClose returns 16:00 UTC on the given day
func sessionClose(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 16, 0, 0, 0, time.UTC)
}

// Candles generates a 15-minute random-walk series for one instrument over
// regular trading hours, weekdays only.
func (g *Generator) Candles(instrument string, startPrice float64, from, to time.Time) []*models.Candle {
	spec := models.SpecFor(instrument)
	price := startPrice
	var candles []*models.Candle

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		for ts := sessionOpen(day); ts.Before(sessionClose(day)); ts = ts.Add(15 * time.Minute) {
			// Random walk with a mild mean-reverting drift
			drift := (startPrice - price) * 0.002
			move := (g.rng.Float64()*2 - 1) * startPrice * 0.0015
			open := price
			close := snapToTick(price+drift+move, spec.TickSize)

			spread := g.rng.Float64() * startPrice * 0.001
			high := maxFloat(open, close) + spread
			low := minFloat(open, close) - spread

			candles = append(candles, &models.Candle{
				Instrument: instrument,
				Timestamp:  ts,
				Open:       snapToTick(open, spec.TickSize),
				High:       snapToTick(high, spec.TickSize),
				Low:        snapToTick(low, spec.TickSize),
				Close:      close,
				Volume:     int64(200 + g.rng.Intn(2000)),
			})

			price = close
		}
	}

	return candles
}

// Trades generates closed trades whose entries and exits land on candle
// timestamps so resimulation has data to walk.
func (g *Generator) Trades(portfolioID uuid.UUID, instrument string, candles []*models.Candle, count int) []*models.Trade {
	if len(candles) < 4 || count <= 0 {
		return nil
	}

	spec := models.SpecFor(instrument)
	trades := make([]*models.Trade, 0, count)

	for i := 0; i < count; i++ {
		entryIdx := g.rng.Intn(len(candles) - 3)
		holdBars := 1 + g.rng.Intn(minInt(12, len(candles)-entryIdx-1))
		exitIdx := entryIdx + holdBars

		entry := candles[entryIdx]
		exit := candles[exitIdx]

		direction := models.DirectionLong
		if g.rng.Float64() < 0.5 {
			direction = models.DirectionShort
		}

		entryPrice := entry.Close
		exitPrice := exit.Close
		contracts := 1 + g.rng.Intn(3)

		var pnl float64
		if direction == models.DirectionLong {
			pnl = (exitPrice - entryPrice) * spec.PointValue * float64(contracts)
		} else {
			pnl = (entryPrice - exitPrice) * spec.PointValue * float64(contracts)
		}

		// Stop one percent away from entry, on the losing side
		stopPct := 0.01
		var stop float64
		if direction == models.DirectionLong {
			stop = entryPrice * (1 - stopPct)
		} else {
			stop = entryPrice * (1 + stopPct)
		}
		initialRisk := stopPct * entryPrice * spec.PointValue * float64(contracts)

		rMultiple := 0.0
		if initialRisk > 0 {
			rMultiple = pnl / initialRisk
		}

		trades = append(trades, &models.Trade{
			ID:          uuid.New(),
			PortfolioID: portfolioID,
			Instrument:  instrument,
			Direction:   direction,
			EntryTime:   entry.Timestamp,
			ExitTime:    exit.Timestamp,
			EntryPrice:  entryPrice,
			ExitPrice:   exitPrice,
			StopPrice:   &stop,
			Contracts:   contracts,
			PnL:         pnl,
			InitialRisk: initialRisk,
			RMultiple:   rMultiple,
			Outcome:     models.OutcomeFromPnL(pnl),
			CreatedAt:   time.Now().UTC(),
		})
	}

	return trades
}

func snapToTick(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	steps := float64(int64(price/tick + 0.5))
	return steps * tick
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
