package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/whatif-futures/internal/models"
	"github.com/yourusername/whatif-futures/internal/scenario"
)

func testServiceLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeCandleSource replays canned candles and records fetch windows
type fakeCandleSource struct {
	candles map[string][]*models.Candle
	err     error
	fetches []string
}

func (f *fakeCandleSource) FetchCandles(ctx context.Context, instrument string, start, end time.Time) ([]*models.Candle, error) {
	f.fetches = append(f.fetches, instrument)
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Candle
	for _, c := range f.candles[instrument] {
		if !c.Timestamp.Before(start) && !c.Timestamp.After(end) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCandleSource) Name() string    { return "fake" }
func (f *fakeCandleSource) IsEnabled() bool { return true }

// fakeCandleRepo stores candles in memory
type fakeCandleRepo struct {
	stored    []*models.Candle
	latest    map[string]time.Time
	insertErr error
}

func newFakeCandleRepo() *fakeCandleRepo {
	return &fakeCandleRepo{latest: make(map[string]time.Time)}
}

func (f *fakeCandleRepo) InsertBatch(ctx context.Context, candles []*models.Candle) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.stored = append(f.stored, candles...)
	return nil
}

func (f *fakeCandleRepo) GetSeries(ctx context.Context, instrument string, start, end time.Time) ([]*models.Candle, error) {
	var out []*models.Candle
	for _, c := range f.stored {
		if c.Instrument == instrument && !c.Timestamp.Before(start) && !c.Timestamp.After(end) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCandleRepo) GetForInstruments(ctx context.Context, instruments []string, start, end time.Time) ([]*models.Candle, error) {
	var out []*models.Candle
	for _, instrument := range instruments {
		series, _ := f.GetSeries(ctx, instrument, start, end)
		out = append(out, series...)
	}
	return out, nil
}

func (f *fakeCandleRepo) GetLatestTimestamp(ctx context.Context, instrument string) (time.Time, error) {
	return f.latest[instrument], nil
}

func syncTestCandle(instrument string, ts time.Time) *models.Candle {
	return &models.Candle{
		Instrument: instrument,
		Timestamp:  ts,
		Open:       5000,
		High:       5005,
		Low:        4995,
		Close:      5002,
		Volume:     500,
	}
}

func TestBackfillStoresCandlesPerInstrument(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	source := &fakeCandleSource{candles: map[string][]*models.Candle{
		"MES": {syncTestCandle("MES", start.Add(time.Hour)), syncTestCandle("MES", start.Add(2*time.Hour))},
		"MNQ": {syncTestCandle("MNQ", start.Add(time.Hour))},
	}}
	repo := newFakeCandleRepo()

	svc := NewCandleSyncService(source, repo, []string{"MES", "MNQ"}, testServiceLogger())
	stats, err := svc.Backfill(context.Background(), start, start.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Len(t, repo.stored, 3)
	assert.Equal(t, 2, stats.Instruments)
	assert.Equal(t, 3, stats.TotalCandles)
	assert.Equal(t, 0, stats.Errors)
}

func TestBackfillChunksLongWindows(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	source := &fakeCandleSource{candles: map[string][]*models.Candle{}}
	repo := newFakeCandleRepo()

	svc := NewCandleSyncService(source, repo, []string{"MES"}, testServiceLogger())
	_, err := svc.Backfill(context.Background(), start, start.AddDate(0, 0, 21))
	require.NoError(t, err)

	// 21 days of history in weekly chunks means three fetches
	assert.Len(t, source.fetches, 3)
}

func TestBackfillContinuesPastFailures(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	source := &fakeCandleSource{err: errors.New("upstream unavailable")}
	repo := newFakeCandleRepo()

	svc := NewCandleSyncService(source, repo, []string{"MES", "MNQ"}, testServiceLogger())
	stats, err := svc.Backfill(context.Background(), start, start.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Errors)
	assert.Empty(t, repo.stored)
}

func TestSyncLatestResumesAfterStoredBar(t *testing.T) {
	now := time.Now().UTC()
	latest := now.Add(-2 * time.Hour)
	fresh := syncTestCandle("MES", now.Add(-time.Hour))
	stale := syncTestCandle("MES", latest.Add(-time.Hour))

	source := &fakeCandleSource{candles: map[string][]*models.Candle{"MES": {stale, fresh}}}
	repo := newFakeCandleRepo()
	repo.latest["MES"] = latest

	svc := NewCandleSyncService(source, repo, []string{"MES"}, testServiceLogger())
	require.NoError(t, svc.SyncLatest(context.Background()))

	require.Len(t, repo.stored, 1)
	assert.Equal(t, fresh.Timestamp, repo.stored[0].Timestamp)
}

func TestSyncLatestDefaultsToLastDay(t *testing.T) {
	now := time.Now().UTC()
	recent := syncTestCandle("MES", now.Add(-time.Hour))
	old := syncTestCandle("MES", now.Add(-48*time.Hour))

	source := &fakeCandleSource{candles: map[string][]*models.Candle{"MES": {old, recent}}}
	repo := newFakeCandleRepo()

	svc := NewCandleSyncService(source, repo, []string{"MES"}, testServiceLogger())
	require.NoError(t, svc.SyncLatest(context.Background()))

	require.Len(t, repo.stored, 1)
	assert.Equal(t, recent.Timestamp, repo.stored[0].Timestamp)
}

func TestStreamHandlerStoresValidCandle(t *testing.T) {
	repo := newFakeCandleRepo()
	svc := NewCandleSyncService(&fakeCandleSource{}, repo, []string{"MES"}, testServiceLogger())

	handler := svc.StreamHandler(time.Second)
	require.NoError(t, handler(syncTestCandle("MES", time.Now().UTC())))
	assert.Len(t, repo.stored, 1)
}

func TestStreamHandlerRejectsMalformedCandle(t *testing.T) {
	repo := newFakeCandleRepo()
	svc := NewCandleSyncService(&fakeCandleSource{}, repo, []string{"MES"}, testServiceLogger())

	bad := syncTestCandle("MES", time.Now().UTC())
	bad.High = bad.Low - 10

	handler := svc.StreamHandler(time.Second)
	require.Error(t, handler(bad))
	assert.Empty(t, repo.stored)
}

// fakeTradeRepo serves a fixed portfolio
type fakeTradeRepo struct {
	trades []*models.Trade
}

func (f *fakeTradeRepo) Create(ctx context.Context, trade *models.Trade) error        { return nil }
func (f *fakeTradeRepo) CreateBatch(ctx context.Context, trades []*models.Trade) error { return nil }
func (f *fakeTradeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	return nil, models.ErrNotFound
}
func (f *fakeTradeRepo) GetByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*models.Trade, error) {
	return f.trades, nil
}
func (f *fakeTradeRepo) GetByPortfolioAndRange(ctx context.Context, portfolioID uuid.UUID, start, end time.Time) ([]*models.Trade, error) {
	return f.trades, nil
}
func (f *fakeTradeRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

// fakeScenarioRepo records saved scenarios
type fakeScenarioRepo struct {
	saved []*scenario.Scenario
}

func (f *fakeScenarioRepo) Save(ctx context.Context, portfolioID uuid.UUID, scn *scenario.Scenario) error {
	f.saved = append(f.saved, scn)
	return nil
}
func (f *fakeScenarioRepo) GetByID(ctx context.Context, id uuid.UUID) (*scenario.Scenario, error) {
	return nil, models.ErrNotFound
}
func (f *fakeScenarioRepo) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*scenario.Scenario, error) {
	return f.saved, nil
}
func (f *fakeScenarioRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
