package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/whatif-futures/internal/models"
)

// CandleHandler is called for each candle received from the stream
type CandleHandler func(candle *models.Candle) error

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// streamMessage is the provider's wire format for stream frames
type streamMessage struct {
	Op     string     `json:"op"`
	Symbol string     `json:"symbol,omitempty"`
	Candle *apiCandle `json:"candle,omitempty"`
}

// StreamClient maintains a WebSocket subscription for live candle updates
type StreamClient struct {
	conn            *websocket.Conn
	streamURL       string
	apiKey          string
	mu              sync.RWMutex
	isConnected     bool
	handlers        []CandleHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Logger
}

// NewStreamClient creates a new candle stream client
func NewStreamClient(streamURL, apiKey string, logger *logrus.Logger) *StreamClient {
	return &StreamClient{
		streamURL:       streamURL,
		apiKey:          apiKey,
		handlers:        make([]CandleHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// Connect establishes the WebSocket connection and starts the read loop
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.streamURL).Info("Connecting to candle stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	s.logger.Info("Connected to candle stream")

	go s.readMessages()

	return nil
}

// ConnectWithRetry connects with exponential backoff
func (s *StreamClient) ConnectWithRetry(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff

	var lastErr error
	for attempt := 0; attempt <= s.reconnectConfig.MaxRetries; attempt++ {
		if err := s.Connect(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		s.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"backoff": backoff.String(),
		}).Warnf("Stream connect failed: %v", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
		if backoff > s.reconnectConfig.MaxBackoff {
			backoff = s.reconnectConfig.MaxBackoff
		}
	}

	return fmt.Errorf("stream connection failed after %d attempts: %w", s.reconnectConfig.MaxRetries+1, lastErr)
}

// Subscribe requests live candle updates for the given instruments
func (s *StreamClient) Subscribe(instruments []string) error {
	subMsg := map[string]interface{}{
		"op":       "subscribe",
		"channel":  "candles_15m",
		"symbols":  instruments,
		"authKey":  s.apiKey,
	}

	s.logger.WithField("instruments", len(instruments)).Info("Subscribing to candle updates")
	return s.sendMessage(subMsg)
}

// AddHandler registers a candle handler
func (s *StreamClient) AddHandler(handler CandleHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// readMessages reads frames from the WebSocket connection
func (s *StreamClient) readMessages() {
	defer s.Close()

	for {
		var raw json.RawMessage
		err := s.conn.ReadJSON(&raw)
		if err != nil {
			s.logger.Warnf("Error reading stream message: %v", err)
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		var msg streamMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warnf("Malformed stream frame: %v", err)
			continue
		}

		if msg.Op != "candle" || msg.Candle == nil {
			continue
		}

		candle := &models.Candle{
			Instrument: msg.Symbol,
			Timestamp:  time.Unix(msg.Candle.Timestamp, 0).UTC(),
			Open:       msg.Candle.Open,
			High:       msg.Candle.High,
			Low:        msg.Candle.Low,
			Close:      msg.Candle.Close,
			Volume:     msg.Candle.Volume,
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(candle); err != nil {
				s.logger.Warnf("Candle handler error: %v", err)
			}
		}
	}
}

// sendMessage sends a JSON message over the stream
func (s *StreamClient) sendMessage(msg interface{}) error {
	s.mu.RLock()
	if !s.isConnected || s.conn == nil {
		s.mu.RUnlock()
		return fmt.Errorf("not connected")
	}
	conn := s.conn
	s.mu.RUnlock()

	return conn.WriteJSON(msg)
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received frame
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	return s.conn.Close()
}

// Ping sends a ping frame to keep the connection alive
func (s *StreamClient) Ping() error {
	return s.sendMessage(map[string]interface{}{"op": "ping"})
}
