package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat     float64
	Lon     float64
	Name    string
	Country string
}

// DisplayName renders the result as "City, Country".
func (r GeocodingResult) DisplayName() string {
	if r.Country == "" {
		return r.Name
	}
	return r.Name + ", " + r.Country
}

// Geocoder resolves free-text locations to coordinates.
type Geocoder interface {
	// ForwardGeocode returns the best match for query. found is false when
	// the provider has no match; that is not an error.
	ForwardGeocode(ctx context.Context, query string) (result GeocodingResult, found bool, err error)
}

// Forecaster fetches current conditions and a daily forecast for coordinates.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lon float64) (CurrentConditions, []DailyForecast, error)
}
