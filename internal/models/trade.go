package models

import (
	"time"

	"github.com/google/uuid"
)

// Direction represents the side of a futures position
type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

// Outcome represents the result classification of a closed trade
type Outcome string

const (
	OutcomeWin       Outcome = "Win"
	OutcomeLoss      Outcome = "Loss"
	OutcomeBreakeven Outcome = "Breakeven"
)

// ExitReason identifies how a simulated trade was closed
type ExitReason string

const (
	ExitReasonOriginal     ExitReason = "Original Exit"
	ExitReasonStopLoss     ExitReason = "Stop Loss"
	ExitReasonTakeProfit   ExitReason = "Take Profit"
	ExitReasonMaxHold      ExitReason = "Max Hold Time"
	ExitReasonNoMarketData ExitReason = "No Market Data"
	ExitReasonNoCandles    ExitReason = "No Candles Found"
)

// Trade represents one closed futures position
type Trade struct {
	ID          uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	PortfolioID uuid.UUID `db:"portfolio_id" json:"portfolio_id" validate:"required,uuid4"`
	Instrument  string    `db:"instrument" json:"instrument" validate:"required"`
	Direction   Direction `db:"direction" json:"direction" validate:"required,oneof=Long Short"`
	EntryTime   time.Time `db:"entry_time" json:"entry_time" validate:"required"`
	ExitTime    time.Time `db:"exit_time" json:"exit_time" validate:"required"`
	EntryPrice  float64   `db:"entry_price" json:"entry_price" validate:"required,gt=0"`
	ExitPrice   float64   `db:"exit_price" json:"exit_price" validate:"required,gt=0"`
	StopPrice   *float64  `db:"stop_price" json:"stop_price"`
	Contracts   int       `db:"contracts" json:"contracts" validate:"required,gte=1"`
	PnL         float64   `db:"pnl" json:"pnl"`
	InitialRisk float64   `db:"initial_risk" json:"initial_risk"`
	RMultiple   float64   `db:"r_multiple" json:"r_multiple"`
	Outcome     Outcome   `db:"outcome" json:"outcome"`

	// Simulation provenance, empty on recorded trades
	ExitReason     ExitReason `db:"exit_reason" json:"exit_reason,omitempty"`
	SlippageCost   float64    `db:"slippage_cost" json:"slippage_cost,omitempty"`
	CommissionCost float64    `db:"commission_cost" json:"commission_cost,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HoldingMinutes returns the holding period in minutes
func (t *Trade) HoldingMinutes() float64 {
	return t.ExitTime.Sub(t.EntryTime).Minutes()
}

// Clone returns a copy of the trade so simulations never mutate input
func (t *Trade) Clone() *Trade {
	clone := *t
	if t.StopPrice != nil {
		stop := *t.StopPrice
		clone.StopPrice = &stop
	}
	return &clone
}

// OutcomeFromPnL classifies a trade by the sign of its pnl
func OutcomeFromPnL(pnl float64) Outcome {
	switch {
	case pnl > 0:
		return OutcomeWin
	case pnl < 0:
		return OutcomeLoss
	default:
		return OutcomeBreakeven
	}
}
