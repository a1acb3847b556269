package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/whatif-futures/internal/models"
	"github.com/yourusername/whatif-futures/internal/repository"
	"github.com/yourusername/whatif-futures/internal/scenario"
)

func analysisFixture() ([]*models.Trade, *fakeCandleRepo) {
	entry := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
	portfolioID := uuid.New()

	trade := &models.Trade{
		ID:          uuid.New(),
		PortfolioID: portfolioID,
		Instrument:  "MES",
		Direction:   models.DirectionLong,
		EntryTime:   entry,
		ExitTime:    entry.Add(time.Hour),
		EntryPrice:  5000,
		ExitPrice:   5010,
		Contracts:   2,
		PnL:         100,
		InitialRisk: 50,
		RMultiple:   2.0,
		Outcome:     models.OutcomeWin,
	}

	repo := newFakeCandleRepo()
	for i := 0; i < 8; i++ {
		repo.stored = append(repo.stored, syncTestCandle("MES", entry.Add(time.Duration(i)*15*time.Minute)))
	}
	return []*models.Trade{trade}, repo
}

func newTestAnalysisService(trades []*models.Trade, candleRepo *fakeCandleRepo, scenarioRepo *fakeScenarioRepo) *AnalysisService {
	repos := &repository.Repositories{
		Trade:    &fakeTradeRepo{trades: trades},
		Candle:   candleRepo,
		Scenario: scenarioRepo,
	}
	return NewAnalysisService(repos, scenario.NewSimulator(testServiceLogger()), testServiceLogger())
}

func TestLoadPortfolio(t *testing.T) {
	trades, candleRepo := analysisFixture()
	svc := newTestAnalysisService(trades, candleRepo, &fakeScenarioRepo{})

	data, err := svc.LoadPortfolio(context.Background(), trades[0].PortfolioID)
	require.NoError(t, err)

	assert.Len(t, data.Trades, 1)
	assert.Len(t, data.Candles, 8)
}

func TestLoadPortfolioEmpty(t *testing.T) {
	svc := newTestAnalysisService(nil, newFakeCandleRepo(), &fakeScenarioRepo{})

	_, err := svc.LoadPortfolio(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trades")
}

func TestAnalysisSessionEndToEnd(t *testing.T) {
	trades, candleRepo := analysisFixture()
	scenarioRepo := &fakeScenarioRepo{}
	svc := newTestAnalysisService(trades, candleRepo, scenarioRepo)

	data, err := svc.LoadPortfolio(context.Background(), trades[0].PortfolioID)
	require.NoError(t, err)

	book := svc.NewSession(data, 50000, time.Minute)
	require.NotNil(t, book.Baseline())

	params := scenario.DefaultParameters()
	params.StopLossPct = floatPtr(0.2)

	scn, err := svc.RunScenario(book, data, "tight stop", params, 50000)
	require.NoError(t, err)
	assert.Equal(t, "tight stop", scn.Name)

	rows := svc.Compare(book)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsBaseline)
	assert.NotNil(t, rows[1].Delta)

	require.NoError(t, svc.Persist(context.Background(), data.PortfolioID, book))
	assert.Len(t, scenarioRepo.saved, 2)
}

func floatPtr(v float64) *float64 { return &v }
