// internal/domain/weather/client.go
package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/your-org/shop-backend/internal/config"
)

// Fetcher retrieves a forecast for a coordinate pair
type Fetcher interface {
	FetchForecast(ctx context.Context, latitude, longitude float64) ([]ForecastDay, error)
}

// Client calls the remote forecast function over HTTP
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient creates a forecast client from configuration
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Weather.RequestTimeout,
		},
		url: cfg.Weather.ForecastURL,
	}
}

// forecastRequest is the payload sent to the forecast function
type forecastRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// forecastResponse is the payload returned by the forecast function
type forecastResponse struct {
	Forecast  []ForecastDay `json:"forecast"`
	FetchedAt time.Time     `json:"fetched_at"`
	Error     string        `json:"error,omitempty"`
}

// FetchForecast requests a forecast for the given coordinates
func (c *Client) FetchForecast(ctx context.Context, latitude, longitude float64) ([]ForecastDay, error) {
	payload, err := json.Marshal(forecastRequest{
		Latitude:  latitude,
		Longitude: longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode forecast request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast service returned status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	if body.Error != "" {
		return nil, fmt.Errorf("forecast service error: %s", body.Error)
	}

	return body.Forecast, nil
}
