package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/whatif-futures/internal/models"
	"github.com/yourusername/whatif-futures/internal/scenario"
)

// TradeRepository defines the interface for trade data access
type TradeRepository interface {
	Create(ctx context.Context, trade *models.Trade) error
	CreateBatch(ctx context.Context, trades []*models.Trade) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	GetByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*models.Trade, error)
	GetByPortfolioAndRange(ctx context.Context, portfolioID uuid.UUID, start, end time.Time) ([]*models.Trade, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CandleRepository defines the interface for market candle data access
type CandleRepository interface {
	InsertBatch(ctx context.Context, candles []*models.Candle) error
	GetSeries(ctx context.Context, instrument string, start, end time.Time) ([]*models.Candle, error)
	GetForInstruments(ctx context.Context, instruments []string, start, end time.Time) ([]*models.Candle, error)
	GetLatestTimestamp(ctx context.Context, instrument string) (time.Time, error)
}

// ScenarioRepository defines the interface for persisted scenario results
type ScenarioRepository interface {
	Save(ctx context.Context, portfolioID uuid.UUID, scn *scenario.Scenario) error
	GetByID(ctx context.Context, id uuid.UUID) (*scenario.Scenario, error)
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*scenario.Scenario, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
