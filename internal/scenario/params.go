// Package scenario re-simulates trade histories under altered exit and
// sizing rules and compares the resulting performance metrics.
package scenario

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// DefaultCapitalAllocationPct is the share of capital deployed when the
// caller does not override it.
const DefaultCapitalAllocationPct = 40.0

// Parameters configures one what-if scenario. Nil pointer fields leave the
// corresponding rule disabled.
type Parameters struct {
	StopLossPct            *float64           `json:"stop_loss_pct" validate:"omitempty,gt=0,lt=100"`
	TakeProfitPct          *float64           `json:"take_profit_pct" validate:"omitempty,gt=0"`
	MinHoldMinutes         *float64           `json:"min_hold_minutes" validate:"omitempty,gte=0"`
	MaxHoldMinutes         *float64           `json:"max_hold_minutes" validate:"omitempty,gt=0"`
	ExcludeDays            []string           `json:"exclude_days" validate:"omitempty,dive,weekday"`
	TradeHoursStart        *float64           `json:"trade_hours_start" validate:"omitempty,gte=0,lt=24"`
	TradeHoursEnd          *float64           `json:"trade_hours_end" validate:"omitempty,gte=0,lt=24"`
	CapitalAllocationPct   float64            `json:"capital_allocation_pct" validate:"gte=0,lte=100"`
	InstrumentSplitPct     map[string]float64 `json:"instrument_split_pct"`
	SlippageTicks          int                `json:"slippage_ticks" validate:"gte=0"`
	CommissionPerContract  float64            `json:"commission_per_contract" validate:"gte=0"`
	CapitalMultiplier      float64            `json:"capital_multiplier" validate:"gte=0"`
	MaxConcurrentPositions *int               `json:"max_concurrent_positions" validate:"omitempty,gt=0"`
}

// DefaultParameters returns the neutral parameter set used for new scenarios
func DefaultParameters() Parameters {
	return Parameters{
		CapitalAllocationPct: DefaultCapitalAllocationPct,
		CapitalMultiplier:    1.0,
	}
}

// normalized returns a copy with zero-valued defaults filled in
func (p Parameters) normalized() Parameters {
	if p.CapitalAllocationPct == 0 {
		p.CapitalAllocationPct = DefaultCapitalAllocationPct
	}
	if p.CapitalMultiplier == 0 {
		p.CapitalMultiplier = 1.0
	}
	return p
}

var paramValidator = newParamValidator()

func newParamValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
			return true
		default:
			return false
		}
	})
	return v
}

// Validate checks parameter ranges and cross-field consistency
func (p Parameters) Validate() error {
	if err := paramValidator.Struct(p); err != nil {
		return fmt.Errorf("invalid scenario parameters: %w", err)
	}
	if (p.TradeHoursStart == nil) != (p.TradeHoursEnd == nil) {
		return fmt.Errorf("trade_hours_start and trade_hours_end must be set together")
	}
	for symbol, pct := range p.InstrumentSplitPct {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("instrument split for %s must be within [0,100], got %.2f", symbol, pct)
		}
	}
	return nil
}

// Hash creates a stable digest of the parameter set, used as a cache key
// since scenario runs are deterministic.
func (p Parameters) Hash() string {
	data, _ := json.Marshal(p)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
