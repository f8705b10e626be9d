package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-widget/internal/api/http"
	"github.com/i474232898/weather-widget/internal/config"
	"github.com/i474232898/weather-widget/internal/logging"
	"github.com/i474232898/weather-widget/internal/scheduler"
	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/weather/providers"
	"github.com/i474232898/weather-widget/internal/widget"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg, "weather-widget")
	slog.SetDefault(log)

	if err := widget.LoadTemplates(); err != nil {
		log.Error("failed to load widget templates", "err", err)
		os.Exit(1)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider, err := providers.New(cfg.Provider, httpClient, providers.Keys{
		WeatherAPI:  cfg.WeatherAPIKey,
		OpenWeather: cfg.OpenWeatherAPIKey,
		Geocoder:    cfg.GeocoderAPIKey,
	})
	if err != nil {
		log.Error("failed to build weather provider", "err", err)
		os.Exit(1)
	}

	service := weather.NewService(provider, cfg.HTTPTimeout, log)

	// Optional provider probe.
	sched := scheduler.New(cfg.ProbeLocation, cfg.ProbeInterval, service, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-widget",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:      service,
		ProviderName: service.ProviderName(),
		Shell:        widget.NewShell(service, log),
		Sessions:     widget.NewSessionStore(cfg.SessionMaxCount, cfg.SessionMaxAge),
		Prober:       sched,
		Location:     cfg.Location,
	})

	go func() {
		log.Info("listening", "addr", ":"+cfg.Port, "provider", cfg.Provider)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "err", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
}
