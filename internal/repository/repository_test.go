package repository

import (
	"testing"
)

const skipIntegrationMsg = "Integration test - requires database setup"

// TestNewRepositoriesRequiresDB tests that a nil database is rejected
func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	if err == nil {
		t.Fatal("expected error for nil database")
	}
}

// TestTradeRepositoryRoundTrip tests trade persistence
func TestTradeRepositoryRoundTrip(t *testing.T) {
	// db := database.SetupTestDB(t)
	// defer database.TeardownTestDB(t, db)

	// repos, err := NewRepositories(db)
	// if err != nil {
	// 	t.Fatalf("failed to create repositories: %v", err)
	// }

	// trade := &models.Trade{
	// 	ID:          uuid.New(),
	// 	PortfolioID: uuid.New(),
	// 	Instrument:  "MES",
	// 	Direction:   models.DirectionLong,
	// 	EntryTime:   time.Now().Add(-2 * time.Hour),
	// 	ExitTime:    time.Now().Add(-1 * time.Hour),
	// 	EntryPrice:  5000.0,
	// 	ExitPrice:   5010.0,
	// 	Contracts:   2,
	// 	PnL:         100.0,
	// 	Outcome:     models.OutcomeWin,
	// }

	// ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	// defer cancel()

	// if err := repos.Trade.Create(ctx, trade); err != nil {
	// 	t.Fatalf("failed to create trade: %v", err)
	// }

	// retrieved, err := repos.Trade.GetByID(ctx, trade.ID)
	// if err != nil {
	// 	t.Fatalf("failed to retrieve trade: %v", err)
	// }

	// if retrieved.Instrument != trade.Instrument {
	// 	t.Errorf("expected instrument %s, got %s", trade.Instrument, retrieved.Instrument)
	// }
	t.Skip(skipIntegrationMsg)
}

// TestCandleRepositoryBatch tests bulk candle inserts and series queries
func TestCandleRepositoryBatch(t *testing.T) {
	// db := database.SetupTestDB(t)
	// defer database.TeardownTestDB(t, db)

	// repos, err := NewRepositories(db)
	// if err != nil {
	// 	t.Fatalf("failed to create repositories: %v", err)
	// }

	// ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// defer cancel()

	// now := time.Now().Truncate(15 * time.Minute)
	// candles := make([]*models.Candle, 50)
	// for i := 0; i < 50; i++ {
	// 	ts := now.Add(time.Duration(i) * 15 * time.Minute)
	// 	candles[i] = &models.Candle{
	// 		Instrument: "MNQ",
	// 		Timestamp:  ts,
	// 		Open:       18000.0,
	// 		High:       18010.0,
	// 		Low:        17990.0,
	// 		Close:      18005.0,
	// 		Volume:     1200,
	// 	}
	// }

	// if err := repos.Candle.InsertBatch(ctx, candles); err != nil {
	// 	t.Fatalf("failed to batch insert candles: %v", err)
	// }

	// series, err := repos.Candle.GetSeries(ctx, "MNQ", now, now.Add(13*time.Hour))
	// if err != nil {
	// 	t.Fatalf("failed to query candle series: %v", err)
	// }

	// if len(series) != 50 {
	// 	t.Errorf("expected 50 candles, got %d", len(series))
	// }
	t.Skip(skipIntegrationMsg)
}

// TestScenarioRepositoryPersistence tests scenario save and list
func TestScenarioRepositoryPersistence(t *testing.T) {
	// db := database.SetupTestDB(t)
	// defer database.TeardownTestDB(t, db)

	// repos, err := NewRepositories(db)
	// if err != nil {
	// 	t.Fatalf("failed to create repositories: %v", err)
	// }

	// ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	// defer cancel()

	// portfolioID := uuid.New()
	// scn := scenario.NewBaseline(nil, 50000)

	// if err := repos.Scenario.Save(ctx, portfolioID, scn); err != nil {
	// 	t.Fatalf("failed to save scenario: %v", err)
	// }

	// saved, err := repos.Scenario.ListByPortfolio(ctx, portfolioID)
	// if err != nil {
	// 	t.Fatalf("failed to list scenarios: %v", err)
	// }

	// if len(saved) != 1 || !saved[0].IsBaseline {
	// 	t.Errorf("expected one baseline scenario, got %d", len(saved))
	// }
	t.Skip(skipIntegrationMsg)
}
