// Package domain holds the travel assistant's core types and the pure parts
// of the context-augmentation pipeline.
//
// # Weather triggers
//
// [NeedsWeather] is a case-insensitive substring match over a fixed keyword
// set. Three families of keywords are recognised:
//
//	direct:     weather, forecast, temperature, climate
//	packing:    pack, packing, bring, wear, clothes, clothing
//	conditions: cold, hot, warm, rain, rainy, snow, sunny, humid
//
// Substring matching means "backpack" also triggers a lookup.
//
// # Destinations
//
// [ResolveLocation] maps free text onto the static [Destinations] table.
// The table order is the tie-break order. Within a destination, aliases are
// tried longest first so "new york" is checked before "ny". Multi-word
// aliases match as a contiguous run of words; single-word aliases must equal
// a whole word, so "la" never matches inside "last".
//
// Text is tokenised on anything that is not a letter or digit:
//
//	"What should I pack for Tokyo?"  →  what should i pack for tokyo
//
// # Augmentation
//
// [RenderWeatherContext] produces a block delimited by [WeatherContextBegin]
// and [WeatherContextEnd]. The block is appended only to the copy of the user
// message that is sent to the model; stored history never contains it.
//
// # Weather codes
//
// Forecast condition codes follow the WMO 4677 subset used by Open-Meteo and
// are translated by [DescribeWeatherCode]:
//
//	0          clear sky
//	1–3        mainly clear, partly cloudy, overcast
//	45, 48     fog
//	51–57      drizzle
//	61–67      rain
//	71–77      snow
//	80–82      rain showers
//	85, 86     snow showers
//	95–99      thunderstorm
package domain
