package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

type AppConfig struct {
	AppEnv   string     `validate:"oneof=dev prod"`
	LogLevel slog.Level

	Port string `validate:"required,numeric"`

	// Provider selects the weather backend: weatherapi, openweather or openmeteo.
	Provider          string `validate:"oneof=weatherapi openweather openmeteo"`
	WeatherAPIKey     string
	OpenWeatherAPIKey string
	GeocoderAPIKey    string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// Location used to compute the hour of day for the time-of-day message.
	Location *time.Location

	// Widget session retention.
	SessionMaxCount int           `validate:"gte=0"` // 0 = unlimited
	SessionMaxAge   time.Duration `validate:"gte=0"` // 0 = unlimited

	// Optional provider probe; disabled when ProbeLocation is empty.
	ProbeLocation string
	ProbeInterval time.Duration `validate:"gt=0"`
}

// Load reads configuration from the environment (and a .env file, if any) with
// sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "err", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	cfg.LogLevel, err = parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", "weatherapi"))
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	tz := getenvDefault("WIDGET_TIMEZONE", "Local")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid WIDGET_TIMEZONE: %w", err)
	}

	if cfg.SessionMaxCount, err = getenvInt("SESSION_MAX_COUNT", 1000); err != nil {
		return nil, err
	}
	if cfg.SessionMaxAge, err = getenvDuration("SESSION_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.ProbeLocation = strings.TrimSpace(os.Getenv("PROBE_LOCATION"))
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.checkProviderKey(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) checkProviderKey() error {
	switch c.Provider {
	case "weatherapi":
		if c.WeatherAPIKey == "" {
			return fmt.Errorf("WEATHERAPI_API_KEY is required for provider weatherapi")
		}
	case "openweather":
		if c.OpenWeatherAPIKey == "" {
			return fmt.Errorf("OPENWEATHER_API_KEY is required for provider openweather")
		}
	case "openmeteo":
		// Open-Meteo is keyless, but queries must be geocoded first.
		if c.GeocoderAPIKey == "" {
			return fmt.Errorf("GEOCODER_API_KEY is required for provider openmeteo")
		}
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
