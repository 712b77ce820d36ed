package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/pest-risk/internal/domain"
	"github.com/couchcryptid/pest-risk/internal/observability"
)

// Client implements domain.WeatherProvider using the OpenWeatherMap
// current-weather API.
type Client struct {
	apiKey     string
	country    string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client. country is an ISO 3166 code
// appended to every city query; empty leaves the query unqualified.
func NewClient(apiKey, baseURL, country string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		country: country,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Current returns the temperature (°C) and relative humidity for city.
func (c *Client) Current(ctx context.Context, city string) (domain.Reading, error) {
	query := city
	if c.country != "" {
		query = fmt.Sprintf("%s,%s", city, c.country)
	}
	params := url.Values{
		"q":     {query},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	start := time.Now()
	reading, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherFetchErrors.Inc()
		return domain.Reading{}, err
	}

	c.logger.Debug("weather fetched", "city", city, "temperature", reading.Temperature, "humidity", reading.Humidity)
	return reading, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return domain.Reading{}, fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return domain.Reading{}, fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode, body)
	}

	var owmResp response
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		return domain.Reading{}, fmt.Errorf("decode response: %w", err)
	}
	if owmResp.Main == nil {
		return domain.Reading{}, fmt.Errorf("decode response: missing main block")
	}

	return domain.Reading{
		Temperature: owmResp.Main.Temp,
		Humidity:    owmResp.Main.Humidity,
	}, nil
}

// OpenWeatherMap API response types.

type response struct {
	Name string    `json:"name"`
	Main *mainInfo `json:"main"`
}

type mainInfo struct {
	Temp     float64 `json:"temp"`     // °C with units=metric
	Humidity float64 `json:"humidity"` // %
}

type errorResponse struct {
	Cod     any    `json:"cod"` // string on errors, number on success
	Message string `json:"message"`
}
