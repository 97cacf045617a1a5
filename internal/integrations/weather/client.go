package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Period is one named forecast window from the NWS gridpoint forecast.
type Period struct {
	Name             string `json:"name"`
	StartTime        string `json:"startTime"`
	Temperature      int    `json:"temperature"`
	TemperatureUnit  string `json:"temperatureUnit"`
	WindSpeed        string `json:"windSpeed"`
	WindDirection    string `json:"windDirection"`
	ShortForecast    string `json:"shortForecast"`
	DetailedForecast string `json:"detailedForecast"`
}

// Forecast is the 7-day forecast for one point.
type Forecast struct {
	Updated string
	Periods []Period
}

type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Updated string   `json:"updated"`
		Periods []Period `json:"periods"`
	} `json:"properties"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("weather: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client reads forecasts from the National Weather Service API. The NWS
// requires an identifying User-Agent on every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client identifying itself with the given user agent.
func NewClient(userAgent string, opts ...Option) (*Client, error) {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("weather: user agent must not be empty")
	}
	c := &Client{
		baseURL:    "https://api.weather.gov",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		userAgent:  userAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PointForecast resolves the forecast office gridpoint for the coordinates
// and returns its 7-day forecast.
func (c *Client) PointForecast(ctx context.Context, lat, lon float64) (Forecast, error) {
	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)

	var points pointsResponse
	if err := c.getJSON(ctx, pointsURL, &points); err != nil {
		return Forecast{}, err
	}
	forecastURL := points.Properties.Forecast
	if forecastURL == "" {
		return Forecast{}, fmt.Errorf("weather: points response for %.4f,%.4f has no forecast url", lat, lon)
	}
	// Gridpoint URLs returned by the points endpoint are absolute; tests
	// exercise relative paths against a local server.
	if strings.HasPrefix(forecastURL, "/") {
		forecastURL = c.baseURL + forecastURL
	}

	var fc forecastResponse
	if err := c.getJSON(ctx, forecastURL, &fc); err != nil {
		return Forecast{}, err
	}
	if len(fc.Properties.Periods) == 0 {
		return Forecast{}, errors.New("weather: forecast has no periods")
	}
	return Forecast{Updated: fc.Properties.Updated, Periods: fc.Properties.Periods}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("weather: create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{StatusCode: res.StatusCode, URL: rawURL, Body: string(buf)}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("weather: read response body: %w", err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("weather: decode response: %w", err)
	}
	return nil
}
