package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/whatif-futures/internal/database"
	"github.com/yourusername/whatif-futures/internal/models"
)

const tradeColumns = `id, portfolio_id, instrument, direction, entry_time, exit_time,
	       entry_price, exit_price, stop_price, contracts, pnl, initial_risk,
	       r_multiple, outcome, exit_reason, slippage_cost, commission_cost, created_at`

// PostgresTradeRepository implements TradeRepository for PostgreSQL
type PostgresTradeRepository struct {
	db *database.DB
}

// NewPostgresTradeRepository creates a new trade repository
func NewPostgresTradeRepository(db *database.DB) TradeRepository {
	return &PostgresTradeRepository{db: db}
}

// Create inserts a new trade
func (r *PostgresTradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	query := `
		INSERT INTO trades (id, portfolio_id, instrument, direction, entry_time, exit_time,
		                    entry_price, exit_price, stop_price, contracts, pnl, initial_risk,
		                    r_multiple, outcome, exit_reason, slippage_cost, commission_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		trade.ID, trade.PortfolioID, trade.Instrument, trade.Direction, trade.EntryTime, trade.ExitTime,
		trade.EntryPrice, trade.ExitPrice, trade.StopPrice, trade.Contracts, trade.PnL, trade.InitialRisk,
		trade.RMultiple, trade.Outcome, trade.ExitReason, trade.SlippageCost, trade.CommissionCost,
	)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}

	return nil
}

// CreateBatch inserts trades in bulk using COPY
func (r *PostgresTradeRepository) CreateBatch(ctx context.Context, trades []*models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	columns := []string{
		"id", "portfolio_id", "instrument", "direction", "entry_time", "exit_time",
		"entry_price", "exit_price", "stop_price", "contracts", "pnl", "initial_risk",
		"r_multiple", "outcome", "exit_reason", "slippage_cost", "commission_cost",
	}

	copyFromSource := make([][]interface{}, len(trades))
	for i, t := range trades {
		copyFromSource[i] = []interface{}{
			t.ID, t.PortfolioID, t.Instrument, t.Direction, t.EntryTime, t.ExitTime,
			t.EntryPrice, t.ExitPrice, t.StopPrice, t.Contracts, t.PnL, t.InitialRisk,
			t.RMultiple, t.Outcome, t.ExitReason, t.SlippageCost, t.CommissionCost,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"trades"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert trades: %w", err)
	}

	if count != int64(len(trades)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(trades))
	}

	return nil
}

// GetByID retrieves a trade by ID
func (r *PostgresTradeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	trade := &models.Trade{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&trade.ID, &trade.PortfolioID, &trade.Instrument, &trade.Direction, &trade.EntryTime, &trade.ExitTime,
		&trade.EntryPrice, &trade.ExitPrice, &trade.StopPrice, &trade.Contracts, &trade.PnL, &trade.InitialRisk,
		&trade.RMultiple, &trade.Outcome, &trade.ExitReason, &trade.SlippageCost, &trade.CommissionCost, &trade.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}

	return trade, nil
}

// GetByPortfolio retrieves all trades for a portfolio ordered by entry time
func (r *PostgresTradeRepository) GetByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE portfolio_id = $1 ORDER BY entry_time ASC`

	rows, err := r.db.GetPool().Query(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by portfolio: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByPortfolioAndRange retrieves trades for a portfolio entered within a date range
func (r *PostgresTradeRepository) GetByPortfolioAndRange(ctx context.Context, portfolioID uuid.UUID, start, end time.Time) ([]*models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades
		WHERE portfolio_id = $1 AND entry_time >= $2 AND entry_time <= $3
		ORDER BY entry_time ASC`

	rows, err := r.db.GetPool().Query(ctx, query, portfolioID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by range: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// Delete removes a trade
func (r *PostgresTradeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM trades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanTrades(rows pgx.Rows) ([]*models.Trade, error) {
	var trades []*models.Trade
	for rows.Next() {
		trade := &models.Trade{}
		err := rows.Scan(
			&trade.ID, &trade.PortfolioID, &trade.Instrument, &trade.Direction, &trade.EntryTime, &trade.ExitTime,
			&trade.EntryPrice, &trade.ExitPrice, &trade.StopPrice, &trade.Contracts, &trade.PnL, &trade.InitialRisk,
			&trade.RMultiple, &trade.Outcome, &trade.ExitReason, &trade.SlippageCost, &trade.CommissionCost, &trade.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}
