package domain

import "strings"

var weatherTriggers = []string{
	// direct
	"weather", "forecast", "temperature", "climate",
	// packing
	"pack", "packing", "bring", "wear", "clothes", "clothing",
	// conditions
	"cold", "hot", "warm", "rain", "rainy", "snow", "sunny", "humid",
}

// NeedsWeather reports whether a message would benefit from live weather data.
func NeedsWeather(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range weatherTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
