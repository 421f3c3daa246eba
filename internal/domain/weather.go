package domain

import (
	"strings"
	"time"
)

// CurrentConditions is the present-moment part of a snapshot.
type CurrentConditions struct {
	Temperature int     `json:"temperature"` // °C, rounded
	Humidity    float64 `json:"humidity"`    // %
	WindSpeed   int     `json:"wind_speed"`  // km/h, rounded
	WeatherCode int     `json:"weather_code"`
	Condition   string  `json:"condition"`
}

// DailyForecast is one day of a multi-day forecast.
type DailyForecast struct {
	Date                string  `json:"date"` // YYYY-MM-DD, local to the location
	High                int     `json:"high"`
	Low                 int     `json:"low"`
	PrecipitationChance float64 `json:"precipitation_chance"`
	WeatherCode         int     `json:"weather_code"`
	Condition           string  `json:"condition"`
}

// WeatherSnapshot is the weather for one location at fetch time. Snapshots
// are treated as immutable once built.
type WeatherSnapshot struct {
	Location  string            `json:"location"` // "City, Country"
	Current   CurrentConditions `json:"current"`
	Forecast  []DailyForecast   `json:"forecast"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// WeatherStatus classifies the outcome of a weather lookup.
type WeatherStatus int

const (
	// WeatherFound means a snapshot is available.
	WeatherFound WeatherStatus = iota
	// WeatherNotFound means the location could not be geocoded.
	WeatherNotFound
	// WeatherFailed means a network, HTTP or decoding failure occurred.
	WeatherFailed
)

func (s WeatherStatus) String() string {
	switch s {
	case WeatherFound:
		return "found"
	case WeatherNotFound:
		return "not_found"
	case WeatherFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// WeatherResult is what a weather lookup returns. Lookups never fail with a
// Go error; failures are reported through Status and Err.
type WeatherResult struct {
	Status   WeatherStatus
	Snapshot *WeatherSnapshot
	CacheHit bool
	Err      error
}

// NormalizeKey is the cache key for a location string.
func NormalizeKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// DescribeWeatherCode returns a readable condition for a WMO weather code.
func DescribeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code == 1:
		return "Mainly clear"
	case code == 2:
		return "Partly cloudy"
	case code == 3:
		return "Overcast"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code == 85 || code == 86:
		return "Snow showers"
	case code >= 95 && code <= 99:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
