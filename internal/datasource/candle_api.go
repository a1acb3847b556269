package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/whatif-futures/internal/models"
)

const candleAPISourceName = "candle_api"

// CandleAPIClient implements CandleSource against a REST market-data API
type CandleAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// apiCandle represents one bar in the provider's wire format
type apiCandle struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"t"` // unix seconds, bar open
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    int64   `json:"v"`
}

// candleResponse is the provider's envelope for a candle query
type candleResponse struct {
	Symbol  string      `json:"symbol"`
	Candles []apiCandle `json:"candles"`
}

// NewCandleAPIClient creates a new REST candle client
func NewCandleAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *CandleAPIClient {
	return &CandleAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the source name
func (c *CandleAPIClient) Name() string {
	return candleAPISourceName
}

// IsEnabled returns whether the source is enabled
func (c *CandleAPIClient) IsEnabled() bool {
	return c.enabled
}

// FetchCandles retrieves 15-minute candles for one instrument within a time range
func (c *CandleAPIClient) FetchCandles(ctx context.Context, instrument string, start, end time.Time) ([]*models.Candle, error) {
	if !c.enabled {
		return nil, NewSourceError(candleAPISourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}

	query := url.Values{}
	query.Set("symbol", instrument)
	query.Set("interval", "15m")
	query.Set("from", fmt.Sprintf("%d", start.Unix()))
	query.Set("to", fmt.Sprintf("%d", end.Unix()))

	reqURL := fmt.Sprintf("%s/candles?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewSourceError(candleAPISourceName, ErrCodeNetworkError, "failed to create request", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewSourceError(candleAPISourceName, ErrCodeNetworkError, "failed to fetch candles", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewSourceError(candleAPISourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewSourceError(candleAPISourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewSourceError(candleAPISourceName, ErrCodeNotFound, fmt.Sprintf("unknown instrument %s", instrument), nil)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewSourceError(candleAPISourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload candleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewSourceError(candleAPISourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	candles := make([]*models.Candle, 0, len(payload.Candles))
	for _, ac := range payload.Candles {
		candle := &models.Candle{
			Instrument: instrument,
			Timestamp:  time.Unix(ac.Timestamp, 0).UTC(),
			Open:       ac.Open,
			High:       ac.High,
			Low:        ac.Low,
			Close:      ac.Close,
			Volume:     ac.Volume,
		}
		if err := candle.Validate(); err != nil {
			c.logger.WithFields(logrus.Fields{
				"instrument": instrument,
				"timestamp":  ac.Timestamp,
			}).Warnf("Skipping malformed candle: %v", err)
			continue
		}
		candles = append(candles, candle)
	}

	c.logger.WithFields(logrus.Fields{
		"instrument": instrument,
		"candles":    len(candles),
	}).Debug("Fetched candles")

	return candles, nil
}
