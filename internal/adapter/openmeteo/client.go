package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/couchcryptid/travel-assistant/internal/observability"
	"github.com/sony/gobreaker"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com"
	DefaultForecastURL  = "https://api.open-meteo.com"

	currentFields = "temperature_2m,weather_code,relative_humidity_2m,wind_speed_10m"
	dailyFields   = "temperature_2m_max,temperature_2m_min,precipitation_probability_max,weather_code"
)

var errMalformed = errors.New("malformed forecast response")

// Client implements domain.Geocoder and domain.Forecaster using the Open-Meteo APIs.
type Client struct {
	geocodingURL string
	forecastURL  string
	forecastDays int
	httpClient   *http.Client
	geocodeCB    *gobreaker.CircuitBreaker
	forecastCB   *gobreaker.CircuitBreaker
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// Options configures a Client. Empty URLs fall back to the public endpoints.
type Options struct {
	GeocodingURL string
	ForecastURL  string
	ForecastDays int
	Timeout      time.Duration
}

// NewClient creates an Open-Meteo client.
func NewClient(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if opts.GeocodingURL == "" {
		opts.GeocodingURL = DefaultGeocodingURL
	}
	if opts.ForecastURL == "" {
		opts.ForecastURL = DefaultForecastURL
	}
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = 7
	}
	return &Client{
		geocodingURL: opts.GeocodingURL,
		forecastURL:  opts.ForecastURL,
		forecastDays: opts.ForecastDays,
		httpClient:   &http.Client{Timeout: opts.Timeout},
		geocodeCB:    newBreaker("openmeteo-geocoding", logger),
		forecastCB:   newBreaker("openmeteo-forecast", logger),
		metrics:      metrics,
		logger:       logger,
	}
}

func newBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// A caller giving up says nothing about Open-Meteo's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// ForwardGeocode returns the first geocoding match for query.
func (c *Client) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, bool, error) {
	params := url.Values{
		"name":     {query},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}
	u := c.geocodingURL + "/v1/search?" + params.Encode()

	var resp geocodingResponse
	if err := c.do(ctx, c.geocodeCB, "geocode", u, &resp); err != nil {
		return domain.GeocodingResult{}, false, err
	}
	if len(resp.Results) == 0 {
		return domain.GeocodingResult{}, false, nil
	}

	r := resp.Results[0]
	return domain.GeocodingResult{
		Lat:     r.Latitude,
		Lon:     r.Longitude,
		Name:    r.Name,
		Country: r.Country,
	}, true, nil
}

// Forecast fetches current conditions and the daily forecast for a coordinate.
// Temperatures and wind speed are rounded to whole units.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (domain.CurrentConditions, []domain.DailyForecast, error) {
	params := url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', 4, 64)},
		"current":       {currentFields},
		"daily":         {dailyFields},
		"timezone":      {"auto"},
		"forecast_days": {strconv.Itoa(c.forecastDays)},
	}
	u := c.forecastURL + "/v1/forecast?" + params.Encode()

	var resp forecastResponse
	if err := c.do(ctx, c.forecastCB, "forecast", u, &resp); err != nil {
		return domain.CurrentConditions{}, nil, err
	}
	return resp.toDomain()
}

func (c *Client) do(ctx context.Context, cb *gobreaker.CircuitBreaker, endpoint, fullURL string, out any) error {
	start := time.Now()
	defer func() {
		c.metrics.WeatherAPIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	_, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request: %w", endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
		}
		return nil, nil
	})
	return err
}

// Open-Meteo API response types.

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time                []string  `json:"time"`
		TemperatureMax      []float64 `json:"temperature_2m_max"`
		TemperatureMin      []float64 `json:"temperature_2m_min"`
		PrecipitationChance []float64 `json:"precipitation_probability_max"`
		WeatherCode         []int     `json:"weather_code"`
	} `json:"daily"`
}

func (r forecastResponse) toDomain() (domain.CurrentConditions, []domain.DailyForecast, error) {
	d := r.Daily
	n := len(d.Time)
	if len(d.TemperatureMax) < n || len(d.TemperatureMin) < n ||
		len(d.PrecipitationChance) < n || len(d.WeatherCode) < n {
		return domain.CurrentConditions{}, nil, errMalformed
	}

	current := domain.CurrentConditions{
		Temperature: round(r.Current.Temperature),
		Humidity:    r.Current.Humidity,
		WindSpeed:   round(r.Current.WindSpeed),
		WeatherCode: r.Current.WeatherCode,
		Condition:   domain.DescribeWeatherCode(r.Current.WeatherCode),
	}

	daily := make([]domain.DailyForecast, n)
	for i := 0; i < n; i++ {
		daily[i] = domain.DailyForecast{
			Date:                d.Time[i],
			High:                round(d.TemperatureMax[i]),
			Low:                 round(d.TemperatureMin[i]),
			PrecipitationChance: d.PrecipitationChance[i],
			WeatherCode:         d.WeatherCode[i],
			Condition:           domain.DescribeWeatherCode(d.WeatherCode[i]),
		}
	}
	return current, daily, nil
}

func round(v float64) int {
	return int(math.Round(v))
}
