package models

import (
	"fmt"
	"time"
)

// Candle represents one OHLCV bar for an instrument
type Candle struct {
	Instrument string    `db:"instrument" json:"instrument" validate:"required"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp" validate:"required"`
	Open       float64   `db:"open" json:"open" validate:"required,gt=0"`
	High       float64   `db:"high" json:"high" validate:"required,gt=0"`
	Low        float64   `db:"low" json:"low" validate:"required,gt=0"`
	Close      float64   `db:"close" json:"close" validate:"required,gt=0"`
	Volume     int64     `db:"volume" json:"volume" validate:"gte=0"`
}

// Validate checks the OHLC shape invariant
func (c *Candle) Validate() error {
	if c.High < c.Open || c.High < c.Close {
		return fmt.Errorf("candle %s@%s: high %.4f below open/close", c.Instrument, c.Timestamp.Format(time.RFC3339), c.High)
	}
	if c.Low > c.Open || c.Low > c.Close {
		return fmt.Errorf("candle %s@%s: low %.4f above open/close", c.Instrument, c.Timestamp.Format(time.RFC3339), c.Low)
	}
	return nil
}
