// Package metrics provides centralized Prometheus metrics registry for the analyzer.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ScenarioRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "whatif",
		Name:      "scenario_runs_total",
		Help:      "Total number of scenario simulations run",
	})
	ScenarioCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "whatif",
		Name:      "scenario_cache_hits_total",
		Help:      "Total number of scenario runs served from the result cache",
	})
	TradesSimulatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "whatif",
		Name:      "trades_simulated_total",
		Help:      "Total number of trades resimulated across all scenarios",
	})
	ExitFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whatif",
		Name:      "exit_fallbacks_total",
		Help:      "Total number of trades that fell back to their recorded exit",
	}, []string{"reason"})
	CandlesIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "whatif",
		Name:      "candles_ingested_total",
		Help:      "Total number of market candles ingested",
	})
	CandleSyncErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "whatif",
		Name:      "candle_sync_errors_total",
		Help:      "Total number of failed candle sync cycles",
	})
)

// Gauge metrics
var (
	ScenariosHeld = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "whatif",
		Name:      "scenarios_held",
		Help:      "Number of non-baseline scenarios currently held",
	})
	StreamConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "whatif",
		Name:      "stream_connected",
		Help:      "Whether the live candle stream is connected (1) or not (0)",
	})
	LastSyncCandles = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "whatif",
		Name:      "last_sync_candles",
		Help:      "Candles fetched in the most recent sync per instrument",
	}, []string{"instrument"})
)

// Histogram metrics
var (
	ScenarioRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "whatif",
		Name:      "scenario_run_duration_seconds",
		Help:      "Duration of scenario simulation runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	CandleFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "whatif",
		Name:      "candle_fetch_duration_seconds",
		Help:      "Duration of candle API fetches in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(ScenarioRunsTotal)
		registry.MustRegister(ScenarioCacheHitsTotal)
		registry.MustRegister(TradesSimulatedTotal)
		registry.MustRegister(ExitFallbacksTotal)
		registry.MustRegister(CandlesIngestedTotal)
		registry.MustRegister(CandleSyncErrorsTotal)

		// Register gauge metrics
		registry.MustRegister(ScenariosHeld)
		registry.MustRegister(StreamConnected)
		registry.MustRegister(LastSyncCandles)

		// Register histogram metrics
		registry.MustRegister(ScenarioRunDuration)
		registry.MustRegister(CandleFetchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScenarioRun records a completed scenario simulation.
func RecordScenarioRun(durationSeconds float64) {
	ScenarioRunsTotal.Inc()
	ScenarioRunDuration.Observe(durationSeconds)
}

// RecordScenarioCacheHit records a scenario served from cache.
func RecordScenarioCacheHit() {
	ScenarioCacheHitsTotal.Inc()
}

// RecordTradesSimulated records a batch of resimulated trades.
func RecordTradesSimulated(count int) {
	TradesSimulatedTotal.Add(float64(count))
}

// RecordExitFallback records a trade that used its recorded exit.
func RecordExitFallback(reason string) {
	ExitFallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordCandlesIngested records ingested candles.
func RecordCandlesIngested(count int) {
	CandlesIngestedTotal.Add(float64(count))
}

// RecordCandleSyncError records a failed sync cycle.
func RecordCandleSyncError() {
	CandleSyncErrorsTotal.Inc()
}

// UpdateScenariosHeld updates the held scenario gauge.
func UpdateScenariosHeld(count int) {
	ScenariosHeld.Set(float64(count))
}

// UpdateStreamConnected updates the stream connectivity gauge.
func UpdateStreamConnected(connected bool) {
	if connected {
		StreamConnected.Set(1)
	} else {
		StreamConnected.Set(0)
	}
}
