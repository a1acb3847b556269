// Package service contains the orchestration layer between data sources,
// storage and the scenario engine.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/whatif-futures/internal/datasource"
	"github.com/yourusername/whatif-futures/internal/logger"
	"github.com/yourusername/whatif-futures/internal/metrics"
	"github.com/yourusername/whatif-futures/internal/models"
	"github.com/yourusername/whatif-futures/internal/repository"
)

// CandleSyncService keeps the local candle store current against a data source
type CandleSyncService struct {
	source      datasource.CandleSource
	candleRepo  repository.CandleRepository
	instruments []string
	syncMetrics *SyncMetrics
	logger      *logrus.Logger
	syncLog     *logger.AnalysisLogger
	chunk       time.Duration
}

// NewCandleSyncService creates a new candle sync service
func NewCandleSyncService(
	source datasource.CandleSource,
	candleRepo repository.CandleRepository,
	instruments []string,
	baseLogger *logrus.Logger,
) *CandleSyncService {
	return &CandleSyncService{
		source:      source,
		candleRepo:  candleRepo,
		instruments: instruments,
		syncMetrics: NewSyncMetrics(),
		logger:      baseLogger,
		syncLog:     logger.NewAnalysisLogger(baseLogger),
		chunk:       7 * 24 * time.Hour,
	}
}

// Backfill fetches and stores candles for all instruments over a historical window
func (s *CandleSyncService) Backfill(ctx context.Context, start, end time.Time) (*SyncMetrics, error) {
	s.syncMetrics.Reset()
	startTime := time.Now()

	s.logger.WithFields(logrus.Fields{
		"instruments": len(s.instruments),
		"from":        start.Format("2006-01-02"),
		"to":          end.Format("2006-01-02"),
	}).Info("Starting candle backfill")

	for _, instrument := range s.instruments {
		if err := s.backfillInstrument(ctx, instrument, start, end); err != nil {
			s.syncMetrics.RecordError()
			metrics.RecordCandleSyncError()
			s.logger.Warnf("Backfill failed for %s: %v", instrument, err)
			// Continue with remaining instruments
		}
	}

	s.syncMetrics.mu.Lock()
	s.syncMetrics.Duration = time.Since(startTime)
	s.syncMetrics.mu.Unlock()

	s.logger.Infof("Candle backfill complete: %s", s.syncMetrics.String())

	return s.syncMetrics, nil
}

// SyncLatest fetches candles newer than the latest stored bar for each instrument
func (s *CandleSyncService) SyncLatest(ctx context.Context) error {
	now := time.Now().UTC()

	for _, instrument := range s.instruments {
		latest, err := s.candleRepo.GetLatestTimestamp(ctx, instrument)
		if err != nil {
			metrics.RecordCandleSyncError()
			s.logger.Warnf("Failed to read latest candle for %s: %v", instrument, err)
			continue
		}

		start := latest
		if start.IsZero() {
			start = now.Add(-24 * time.Hour)
		} else {
			// Re-fetch from the bar after the last stored one
			start = start.Add(time.Second)
		}

		fetchStart := time.Now()
		candles, err := s.source.FetchCandles(ctx, instrument, start, now)
		metrics.CandleFetchDuration.Observe(time.Since(fetchStart).Seconds())
		if err != nil {
			metrics.RecordCandleSyncError()
			s.logger.Warnf("Failed to fetch candles for %s: %v", instrument, err)
			continue
		}

		if len(candles) == 0 {
			continue
		}

		if err := s.candleRepo.InsertBatch(ctx, candles); err != nil {
			metrics.RecordCandleSyncError()
			s.logger.Warnf("Failed to store candles for %s: %v", instrument, err)
			continue
		}

		metrics.RecordCandlesIngested(len(candles))
		metrics.LastSyncCandles.WithLabelValues(instrument).Set(float64(len(candles)))

		s.syncLog.LogCandleSync(instrument, len(candles), start, now)
	}

	return nil
}

// backfillInstrument fetches one instrument's history in weekly chunks
func (s *CandleSyncService) backfillInstrument(ctx context.Context, instrument string, start, end time.Time) error {
	total := 0

	for chunkStart := start; chunkStart.Before(end); chunkStart = chunkStart.Add(s.chunk) {
		chunkEnd := chunkStart.Add(s.chunk)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		fetchStart := time.Now()
		candles, err := s.source.FetchCandles(ctx, instrument, chunkStart, chunkEnd)
		metrics.CandleFetchDuration.Observe(time.Since(fetchStart).Seconds())
		if err != nil {
			return fmt.Errorf("failed to fetch candles for %s: %w", instrument, err)
		}

		if len(candles) == 0 {
			continue
		}

		if err := s.candleRepo.InsertBatch(ctx, candles); err != nil {
			return fmt.Errorf("failed to store candles for %s: %w", instrument, err)
		}

		total += len(candles)
		metrics.RecordCandlesIngested(len(candles))
	}

	s.syncMetrics.RecordInstrument(total)
	return nil
}

// StreamHandler returns a handler that stores candles delivered by the live stream
func (s *CandleSyncService) StreamHandler(timeout time.Duration) datasource.CandleHandler {
	return func(candle *models.Candle) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := candle.Validate(); err != nil {
			return fmt.Errorf("invalid stream candle: %w", err)
		}

		if err := s.candleRepo.InsertBatch(ctx, []*models.Candle{candle}); err != nil {
			metrics.RecordCandleSyncError()
			return fmt.Errorf("failed to store stream candle: %w", err)
		}

		metrics.RecordCandlesIngested(1)
		return nil
	}
}
