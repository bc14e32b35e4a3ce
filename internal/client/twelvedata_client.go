package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"services/market-data-service/internal/model"

	"go.uber.org/zap"
)

const (
	// TwelveDataAPIBaseURL is the provider's REST endpoint
	TwelveDataAPIBaseURL = "https://api.twelvedata.com"

	dateLayout = "2006-01-02"
)

// Recorder charges the credit cost of a provider request against the quota
// ledger. The client records once a response has been returned, regardless
// of its status code; a request that never reached the provider costs nothing.
type Recorder interface {
	Record(url string, cost int)
}

// TwelveDataClient handles communication with the TwelveData API
type TwelveDataClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	recorder   Recorder
	logger     *zap.Logger
}

// NewTwelveDataClient creates a new TwelveData API client. An empty baseURL
// selects the production endpoint.
func NewTwelveDataClient(baseURL, apiKey string, recorder Recorder, logger *zap.Logger) *TwelveDataClient {
	if baseURL == "" {
		baseURL = TwelveDataAPIBaseURL
	}
	return &TwelveDataClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		recorder: recorder,
		logger:   logger,
	}
}

// EarliestTimestamp retrieves the first date the provider can serve data
// for a symbol at the given interval. Costs one credit.
func (c *TwelveDataClient) EarliestTimestamp(ctx context.Context, symbol string, interval model.Interval) (time.Time, error) {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("interval", interval.String())
	params.Add("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/earliest_timestamp?%s", c.baseURL, params.Encode())

	body, err := c.get(ctx, reqURL, 1)
	if err != nil {
		return time.Time{}, err
	}

	var earliest model.TwelveDataEarliestDateResponse
	if err := json.Unmarshal(body, &earliest); err != nil {
		c.logger.Error("Failed to decode earliest timestamp response", zap.Error(err))
		return time.Time{}, fmt.Errorf("failed to decode earliest timestamp: %w", err)
	}

	date, err := earliest.Date()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse earliest timestamp: %w", err)
	}

	return date, nil
}

// TimeSeries retrieves bars for a symbol between two dates, both inclusive.
// Costs one credit.
func (c *TwelveDataClient) TimeSeries(ctx context.Context, symbol string, interval model.Interval, start, end time.Time) (*model.TwelveDataTimeSeriesResponse, error) {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("interval", interval.String())
	params.Add("start_date", start.Format(dateLayout))
	params.Add("end_date", end.Format(dateLayout))
	params.Add("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/time_series?%s", c.baseURL, params.Encode())

	body, err := c.get(ctx, reqURL, 1)
	if err != nil {
		return nil, err
	}

	var series model.TwelveDataTimeSeriesResponse
	if err := json.Unmarshal(body, &series); err != nil {
		c.logger.Error("Failed to decode time series response",
			zap.Error(err),
			zap.String("symbol", symbol))
		return nil, fmt.Errorf("failed to decode time series: %w", err)
	}

	if len(series.Values) == 0 {
		c.logger.Warn("Provider returned empty time series",
			zap.String("symbol", symbol),
			zap.String("interval", interval.String()))
	}

	return &series, nil
}

// AvailableSymbols retrieves the provider's full symbol listing. The listing
// endpoint is not metered, so nothing is recorded.
func (c *TwelveDataClient) AvailableSymbols(ctx context.Context) (*model.TwelveDataAvailableSymbolsResponse, error) {
	reqURL := fmt.Sprintf("%s/stocks", c.baseURL)

	body, err := c.get(ctx, reqURL, 0)
	if err != nil {
		return nil, err
	}

	var listing model.TwelveDataAvailableSymbolsResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		c.logger.Error("Failed to decode available symbols response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode available symbols: %w", err)
	}

	return &listing, nil
}

// get performs one GET round-trip and returns the response body. The cost is
// recorded as soon as a response comes back, before the status check, so
// failed requests are charged too.
func (c *TwelveDataClient) get(ctx context.Context, reqURL string, cost int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("Calling TwelveData API", zap.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to reach TwelveData", zap.Error(err))
		return nil, fmt.Errorf("failed to reach provider: %w", err)
	}
	defer resp.Body.Close()

	if cost > 0 && c.recorder != nil {
		c.recorder.Record(reqURL, cost)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("TwelveData API error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(body)))
		return nil, fmt.Errorf("TwelveData API returned status code %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
