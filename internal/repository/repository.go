package repository

import (
	"fmt"

	"github.com/yourusername/whatif-futures/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Trade    TradeRepository
	Candle   CandleRepository
	Scenario ScenarioRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Trade:    NewPostgresTradeRepository(db),
		Candle:   NewPostgresCandleRepository(db),
		Scenario: NewPostgresScenarioRepository(db),
	}, nil
}
