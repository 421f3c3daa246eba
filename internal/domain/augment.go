package domain

import (
	"fmt"
	"strings"
)

// Delimiters of the rendered weather block. The system prompt tells the
// model to treat anything between them as ground truth.
const (
	WeatherContextBegin = "[LIVE WEATHER DATA - Use this as the source of truth for current conditions]"
	WeatherContextEnd   = "[END WEATHER DATA]"
)

// DefaultContextDays is how many forecast days are rendered by default.
const DefaultContextDays = 5

// RenderWeatherContext formats a snapshot as a delimited text block holding at
// most days forecast lines. It returns false when there is nothing to render.
func RenderWeatherContext(snapshot *WeatherSnapshot, days int) (string, bool) {
	if snapshot == nil {
		return "", false
	}
	if days <= 0 {
		days = DefaultContextDays
	}

	forecast := snapshot.Forecast
	if len(forecast) > days {
		forecast = forecast[:days]
	}

	var b strings.Builder
	b.WriteString(WeatherContextBegin + "\n")
	fmt.Fprintf(&b, "Location: %s\n", snapshot.Location)
	fmt.Fprintf(&b, "Current Conditions: %d°C, %s\n", snapshot.Current.Temperature, snapshot.Current.Condition)
	fmt.Fprintf(&b, "Humidity: %s%%\n", formatNumber(snapshot.Current.Humidity))
	fmt.Fprintf(&b, "Wind: %d km/h\n", snapshot.Current.WindSpeed)
	fmt.Fprintf(&b, "\n%d-Day Forecast:\n", len(forecast))
	for _, day := range forecast {
		fmt.Fprintf(&b, "  %s: %s, High %d°C / Low %d°C, %s%% chance of precipitation\n",
			day.Date, day.Condition, day.High, day.Low, formatNumber(day.PrecipitationChance))
	}
	b.WriteString(WeatherContextEnd)
	return b.String(), true
}

// AugmentMessage appends the rendered weather block to a user message.
func AugmentMessage(message string, snapshot *WeatherSnapshot, days int) (string, bool) {
	block, ok := RenderWeatherContext(snapshot, days)
	if !ok {
		return message, false
	}
	return message + "\n\n" + block, true
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
