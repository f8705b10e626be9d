package providers

import (
	"fmt"
	"net/http"

	"github.com/i474232898/weather-widget/internal/weather"
)

// Names of the providers New can build.
const (
	NameWeatherAPI  = "weatherapi"
	NameOpenWeather = "openweather"
	NameOpenMeteo   = "openmeteo"
)

// Keys carries the credentials the providers need.
type Keys struct {
	WeatherAPI  string
	OpenWeather string
	Geocoder    string
}

// New builds the provider registered under name.
func New(name string, client *http.Client, keys Keys) (weather.Provider, error) {
	switch name {
	case NameWeatherAPI:
		return NewWeatherAPIProvider(client, keys.WeatherAPI), nil
	case NameOpenWeather:
		return NewOpenWeatherProvider(client, keys.OpenWeather), nil
	case NameOpenMeteo:
		return NewOpenMeteoProvider(client, NewGoogleGeocoder(keys.Geocoder)), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", name)
	}
}
