package service

import (
	"fmt"
	"sync"
	"time"
)

// SyncMetrics tracks statistics about candle synchronization
type SyncMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	Instruments      int
	TotalCandles     int
	ValidationErrors int
	Errors           int
}

// NewSyncMetrics creates a new metrics tracker
func NewSyncMetrics() *SyncMetrics {
	return &SyncMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *SyncMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.Instruments = 0
	m.TotalCandles = 0
	m.ValidationErrors = 0
	m.Errors = 0
}

// RecordInstrument increments the synced instrument count
func (m *SyncMetrics) RecordInstrument(candles int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Instruments++
	m.TotalCandles += candles
}

// RecordError increments the error count
func (m *SyncMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// String renders a summary of the sync cycle
func (m *SyncMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("%d instruments, %d candles, %d errors, duration: %v",
		m.Instruments, m.TotalCandles, m.Errors, m.Duration)
}
