package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/whatif-futures/internal/database"
	"github.com/yourusername/whatif-futures/internal/models"
)

// PostgresCandleRepository implements CandleRepository for PostgreSQL.
// Candles live in a TimescaleDB hypertable keyed on (instrument, ts).
type PostgresCandleRepository struct {
	db *database.DB
}

// NewPostgresCandleRepository creates a new candle repository
func NewPostgresCandleRepository(db *database.DB) CandleRepository {
	return &PostgresCandleRepository{db: db}
}

// InsertBatch inserts candles in bulk using COPY
func (r *PostgresCandleRepository) InsertBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	columns := []string{"instrument", "ts", "open", "high", "low", "close", "volume"}

	copyFromSource := make([][]interface{}, len(candles))
	for i, c := range candles {
		copyFromSource[i] = []interface{}{
			c.Instrument, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"candles"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert candles: %w", err)
	}

	if count != int64(len(candles)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(candles))
	}

	return nil
}

// GetSeries retrieves candles for one instrument within a time range, oldest first
func (r *PostgresCandleRepository) GetSeries(ctx context.Context, instrument string, start, end time.Time) ([]*models.Candle, error) {
	query := `
		SELECT instrument, ts, open, high, low, close, volume
		FROM candles
		WHERE instrument = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, instrument, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetForInstruments retrieves candles for several instruments in one query
func (r *PostgresCandleRepository) GetForInstruments(ctx context.Context, instruments []string, start, end time.Time) ([]*models.Candle, error) {
	query := `
		SELECT instrument, ts, open, high, low, close, volume
		FROM candles
		WHERE instrument = ANY($1) AND ts >= $2 AND ts <= $3
		ORDER BY instrument, ts ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, instruments, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles for instruments: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetLatestTimestamp returns the newest candle timestamp stored for an instrument.
// Returns the zero time when no candles exist yet.
func (r *PostgresCandleRepository) GetLatestTimestamp(ctx context.Context, instrument string) (time.Time, error) {
	var ts time.Time
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT ts FROM candles WHERE instrument = $1 ORDER BY ts DESC LIMIT 1`, instrument,
	).Scan(&ts)
	if err == pgx.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest candle timestamp: %w", err)
	}
	return ts, nil
}

func scanCandles(rows pgx.Rows) ([]*models.Candle, error) {
	var candles []*models.Candle
	for rows.Next() {
		candle := &models.Candle{}
		err := rows.Scan(
			&candle.Instrument, &candle.Timestamp, &candle.Open, &candle.High,
			&candle.Low, &candle.Close, &candle.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, candle)
	}

	return candles, rows.Err()
}
