package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerValidLevel(t *testing.T) {
	log := NewLogger("debug")
	require.NotNil(t, log)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("nonsense")
	require.NotNil(t, log)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestAnalysisLoggerScenarioRun(t *testing.T) {
	log, buf := setupTestLogger()
	al := NewAnalysisLogger(log)

	al.LogScenarioRun("scn_001", "Tighter Stop", 120, 95, 4250.50, 48*time.Millisecond)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "analysis", entry["component"])
	assert.Equal(t, "scn_001", entry["scenario_id"])
	assert.Equal(t, "Tighter Stop", entry["scenario_name"])
	assert.Equal(t, float64(120), entry["input_trades"])
	assert.Equal(t, float64(95), entry["surviving_trades"])
	assert.Equal(t, 4250.50, entry["total_pnl"])
}

func TestAnalysisLoggerExitFallback(t *testing.T) {
	log, buf := setupTestLogger()
	al := NewAnalysisLogger(log)

	al.LogExitFallback("trade_42", "MES", "No Market Data")

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "MES", entry["instrument"])
	assert.Equal(t, "No Market Data", entry["reason"])
}

func TestAnalysisLoggerCandleSync(t *testing.T) {
	log, buf := setupTestLogger()
	al := NewAnalysisLogger(log)

	from := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)
	al.LogCandleSync("MNQ", 26, from, to)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "MNQ", entry["instrument"])
	assert.Equal(t, float64(26), entry["candles"])
}
