package weather

import (
	"context"
)

// Provider abstracts a weather data source (e.g. WeatherAPI, OpenWeatherMap, Open-Meteo).
// Fetch resolves a free-text location query into a Celsius Reading.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, query string) (Reading, error)
}
