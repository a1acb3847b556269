package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/whatif-futures/internal/logger"
	"github.com/yourusername/whatif-futures/internal/models"
	"github.com/yourusername/whatif-futures/internal/repository"
	"github.com/yourusername/whatif-futures/internal/scenario"
)

// AnalysisService orchestrates what-if analysis over a stored portfolio
type AnalysisService struct {
	tradeRepo    repository.TradeRepository
	candleRepo   repository.CandleRepository
	scenarioRepo repository.ScenarioRepository
	simulator    *scenario.Simulator
	logger       *logrus.Logger
	analysisLog  *logger.AnalysisLogger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	repos *repository.Repositories,
	simulator *scenario.Simulator,
	baseLogger *logrus.Logger,
) *AnalysisService {
	return &AnalysisService{
		tradeRepo:    repos.Trade,
		candleRepo:   repos.Candle,
		scenarioRepo: repos.Scenario,
		simulator:    simulator,
		logger:       baseLogger,
		analysisLog:  logger.NewAnalysisLogger(baseLogger),
	}
}

// PortfolioData holds the inputs loaded for one analysis session
type PortfolioData struct {
	PortfolioID uuid.UUID
	Trades      []*models.Trade
	Candles     []*models.Candle
}

// LoadPortfolio fetches a portfolio's trades and the candle history covering them
func (s *AnalysisService) LoadPortfolio(ctx context.Context, portfolioID uuid.UUID) (*PortfolioData, error) {
	trades, err := s.tradeRepo.GetByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("portfolio %s has no trades", portfolioID)
	}

	instruments := make(map[string]bool)
	earliest := trades[0].EntryTime
	latest := trades[0].ExitTime
	for _, t := range trades {
		instruments[t.Instrument] = true
		if t.EntryTime.Before(earliest) {
			earliest = t.EntryTime
		}
		if t.ExitTime.After(latest) {
			latest = t.ExitTime
		}
	}

	names := make([]string, 0, len(instruments))
	for name := range instruments {
		names = append(names, name)
	}

	// Pad the window so max-hold extensions still have data to walk
	candles, err := s.candleRepo.GetForInstruments(ctx, names, earliest.Add(-time.Hour), latest.Add(7*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to load candles: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"portfolio_id": portfolioID,
		"trades":       len(trades),
		"candles":      len(candles),
		"instruments":  len(names),
	}).Info("Loaded portfolio for analysis")

	return &PortfolioData{
		PortfolioID: portfolioID,
		Trades:      trades,
		Candles:     candles,
	}, nil
}

// NewSession builds a scenario book seeded with the portfolio baseline
func (s *AnalysisService) NewSession(data *PortfolioData, startingCapital float64, cacheTTL time.Duration) *scenario.Book {
	book := scenario.NewBook(cacheTTL)
	book.SetBaseline(scenario.NewBaseline(data.Trades, startingCapital))
	return book
}

// RunScenario adds one what-if scenario to a session
func (s *AnalysisService) RunScenario(book *scenario.Book, data *PortfolioData, name string, params scenario.Parameters, startingCapital float64) (*scenario.Scenario, error) {
	started := time.Now()
	scn, err := book.Run(s.simulator, name, params, data.Trades, data.Candles, startingCapital)
	if err != nil {
		return nil, err
	}

	s.analysisLog.LogScenarioRun(scn.ID.String(), name, len(data.Trades), len(scn.Trades), scn.Metrics.TotalPnL, time.Since(started))

	return scn, nil
}

// Compare builds the comparison matrix for every scenario in the session
func (s *AnalysisService) Compare(book *scenario.Book) []scenario.ComparisonRow {
	rows := scenario.BuildComparisonMatrix(book.List(), scenario.DefaultComparisonKeys)
	s.analysisLog.LogComparisonBuilt(len(rows), len(scenario.DefaultComparisonKeys))
	return rows
}

// Persist saves every scenario in the session for later retrieval
func (s *AnalysisService) Persist(ctx context.Context, portfolioID uuid.UUID, book *scenario.Book) error {
	for _, scn := range book.List() {
		if err := s.scenarioRepo.Save(ctx, portfolioID, scn); err != nil {
			return fmt.Errorf("failed to persist scenario %q: %w", scn.Name, err)
		}
	}
	return nil
}
