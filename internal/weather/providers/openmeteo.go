package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-widget/internal/weather"
)

// Geocoder resolves a free-text location query into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat, lon float64, err error)
}

// geocodeAddress is the geocoding call; swapped out in tests.
var geocodeAddress = geocoder.Geocoding

// GoogleGeocoder resolves queries through the Google Geocoding API. The
// underlying client takes no context, so Geocode returns as soon as ctx is done
// and the abandoned lookup finishes in the background.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoder package with apiKey.
func NewGoogleGeocoder(apiKey string) GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return GoogleGeocoder{}
}

func (GoogleGeocoder) Geocode(ctx context.Context, query string) (float64, float64, error) {
	if geocoder.ApiKey == "" {
		return 0, 0, fmt.Errorf("geocoder: %w", errMissingKey)
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	lookup := geocodeAddress
	done := make(chan result, 1)
	go func() {
		loc, err := lookup(geocoder.Address{City: query})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("geocoder: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return 0, 0, fmt.Errorf("geocoder: %w", res.err)
		}
		return res.loc.Latitude, res.loc.Longitude, nil
	}
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo only takes coordinates, so queries are geocoded first.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	client   *http.Client
	geocoder Geocoder
	circuit  *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, geo Geocoder) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     NameOpenMeteo,
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		client:   client,
		geocoder: geo,
		circuit:  newCircuitBreaker(NameOpenMeteo),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, query string) (weather.Reading, error) {
	if p.geocoder == nil {
		return weather.Reading{}, fmt.Errorf("openmeteo requires a geocoder")
	}

	lat, lon, err := p.geocoder.Geocode(ctx, query)
	if err != nil {
		return weather.Reading{}, err
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))
		values.Set("current_weather", "true")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather *struct {
			Temperature float64 `json:"temperature"`
			Time        string  `json:"time"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("openmeteo: decode response: %w", err)
	}
	if payload.CurrentWeather == nil {
		return weather.Reading{}, fmt.Errorf("openmeteo: %w", weather.ErrIncompleteReading)
	}

	cw := payload.CurrentWeather
	r, err := weather.NewReading(cw.Temperature, weather.UnitCelsius, describeWeatherCode(cw.WeatherCode), query)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("openmeteo: %w", err)
	}
	r.Provider = p.name
	// Open-Meteo reports "2006-01-02T15:04" without a zone; we ask for UTC.
	if ts, err := time.Parse("2006-01-02T15:04", cw.Time); err == nil {
		r.ObservedAt = ts.UTC()
	}
	return r, nil
}

// describeWeatherCode maps a WMO weather code to the condition vocabulary the
// message formatter understands.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Sunny"
	case code == 1 || code == 2:
		return "Partly cloudy"
	case code == 3:
		return "Overcast"
	case code == 45 || code == 48:
		return "Fog"
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return "Rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "Snow"
	case code >= 95:
		return "Thunderstorm"
	default:
		return fmt.Sprintf("Weather code %d", code)
	}
}
