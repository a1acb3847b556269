// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for scenario analysis runs.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogScenarioRun logs a completed scenario simulation.
func (al *AnalysisLogger) LogScenarioRun(scenarioID, name string, inputTrades, survivingTrades int, totalPnL float64, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"scenario_id":      scenarioID,
		"scenario_name":    name,
		"input_trades":     inputTrades,
		"surviving_trades": survivingTrades,
		"total_pnl":        totalPnL,
		"duration_ms":      duration.Milliseconds(),
	}).Info("Scenario run completed")
}

// LogExitFallback logs a trade that could not be resimulated against market data.
func (al *AnalysisLogger) LogExitFallback(tradeID, instrument, reason string) {
	al.WithFields(logrus.Fields{
		"trade_id":   tradeID,
		"instrument": instrument,
		"reason":     reason,
	}).Warn("Exit resimulation fell back")
}

// LogCandleSync logs a candle ingestion cycle.
func (al *AnalysisLogger) LogCandleSync(instrument string, candles int, from, to time.Time) {
	al.WithFields(logrus.Fields{
		"instrument": instrument,
		"candles":    candles,
		"from":       from.Format(time.RFC3339),
		"to":         to.Format(time.RFC3339),
	}).Info("Candle sync completed")
}

// LogComparisonBuilt logs generation of a comparison matrix.
func (al *AnalysisLogger) LogComparisonBuilt(scenarios int, metricKeys int) {
	al.WithFields(logrus.Fields{
		"scenarios":   scenarios,
		"metric_keys": metricKeys,
	}).Info("Comparison matrix built")
}
