package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dpup/trailhead/server/internal/lib/forecast"
	"github.com/dpup/trailhead/server/internal/metrics"
)

// API docs: https://open-meteo.com/en/docs
const (
	DefaultBaseURL      = "https://api.open-meteo.com/v1/forecast"
	DefaultForecastDays = 7
	DefaultMaxAttempts  = 3
	DefaultBackoff      = 200 * time.Millisecond
)

var hourlyVars = []string{
	"temperature_2m",
	"apparent_temperature",
	"precipitation_probability",
	"precipitation",
	"weather_code",
	"wind_speed_10m",
	"wind_gusts_10m",
	"wind_direction_10m",
	"relative_humidity_2m",
	"uv_index",
	"cloud_cover",
	"visibility",
}

var dailyVars = []string{
	"weather_code",
	"temperature_2m_max",
	"temperature_2m_min",
	"apparent_temperature_max",
	"apparent_temperature_min",
	"precipitation_sum",
	"precipitation_probability_max",
	"wind_speed_10m_max",
	"uv_index_max",
	"sunrise",
	"sunset",
}

// HTTPDoer is satisfied by *http.Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TimezoneResolver names the IANA zone for a coordinate. An empty result lets
// the provider pick.
type TimezoneResolver interface {
	ForCoordinate(lat, lng float64) string
}

// Client provides access to the Open-Meteo forecast API
type Client struct {
	httpClient   HTTPDoer
	baseURL      string
	timezones    TimezoneResolver
	forecastDays int
	maxAttempts  int
	backoff      time.Duration
}

// Option customizes a Client
type Option func(*Client)

// WithTimezones resolves the forecast timezone locally instead of "auto"
func WithTimezones(tz TimezoneResolver) Option {
	return func(c *Client) { c.timezones = tz }
}

// WithRetry sets the attempt count and initial backoff for transient failures
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithForecastDays sets how many days are requested
func WithForecastDays(days int) Option {
	return func(c *Client) {
		if days > 0 {
			c.forecastDays = days
		}
	}
}

// NewClient creates a new Open-Meteo client. Per-request deadlines come from
// the caller's context.
func NewClient(baseURL string, opts ...Option) *Client {
	return NewClientWithHTTPDoer(baseURL, &http.Client{Timeout: 30 * time.Second}, opts...)
}

// NewClientWithHTTPDoer creates a client with a custom transport, used in tests
func NewClientWithHTTPDoer(baseURL string, doer HTTPDoer, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient:   doer,
		baseURL:      baseURL,
		forecastDays: DefaultForecastDays,
		maxAttempts:  DefaultMaxAttempts,
		backoff:      DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetForecast retrieves hourly and daily series for a coordinate in
// Fahrenheit, mph and inches.
func (c *Client) GetForecast(ctx context.Context, lat, lng float64) (*ForecastAPIResponse, error) {
	requestURL, err := c.forecastURL(lat, lng)
	if err != nil {
		return nil, err
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var response ForecastAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Hourly.Time) == 0 && len(response.Daily.Time) == 0 {
		return nil, errors.New("forecast response contained no data")
	}
	return &response, nil
}

// Fetch implements forecast.Fetcher
func (c *Client) Fetch(ctx context.Context, lat, lng float64) (*forecast.RawForecast, error) {
	resp, err := c.GetForecast(ctx, lat, lng)
	if err != nil {
		return nil, err
	}
	return resp.ToRaw(), nil
}

func (c *Client) forecastURL(lat, lng float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	tz := "auto"
	if c.timezones != nil {
		if name := c.timezones.ForCoordinate(lat, lng); name != "" {
			tz = name
		}
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("hourly", strings.Join(hourlyVars, ","))
	q.Set("daily", strings.Join(dailyVars, ","))
	q.Set("timezone", tz)
	q.Set("forecast_days", strconv.Itoa(c.forecastDays))
	q.Set("timeformat", "iso8601")
	q.Set("wind_speed_unit", "mph")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("precipitation_unit", "inch")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	switch e.Code {
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	default:
		return fmt.Sprintf("API error %d: %s", e.Code, e.Body)
	}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx responses with exponential
// backoff. It gives up early when ctx is done.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.maxAttempts {
			return nil, lastErr
		}
		metrics.WeatherRetries.Inc()

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
