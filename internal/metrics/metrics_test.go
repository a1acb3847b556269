package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestInitRegistryIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()

	assert.Same(t, first, second)
}

func TestRecordScenarioRun(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordScenarioRun(0.25)
	})
}

func TestRecordTradesSimulated(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordTradesSimulated(120)
	})
}

func TestRecordExitFallback(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordExitFallback("No Market Data")
		RecordExitFallback("No Candles Found")
	})
}

func TestUpdateStreamConnected(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		UpdateStreamConnected(true)
		UpdateStreamConnected(false)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordScenarioRun(0.1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "whatif_scenario_runs_total")
}
