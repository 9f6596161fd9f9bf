package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Mananajo65/Andaaz-Decorations/api"
	"github.com/Mananajo65/Andaaz-Decorations/config"
	"github.com/Mananajo65/Andaaz-Decorations/engine"
	"github.com/Mananajo65/Andaaz-Decorations/internal/errorutil"
	"github.com/Mananajo65/Andaaz-Decorations/internal/logger"
	"github.com/Mananajo65/Andaaz-Decorations/scheduler"
	"github.com/Mananajo65/Andaaz-Decorations/store"
	"github.com/Mananajo65/Andaaz-Decorations/weather"
	"github.com/Mananajo65/Andaaz-Decorations/web"
)

func main() {
	configPath := flag.String("config", getDefaultConfigPath(), "Path to TOML configuration file")
	generateConfig := flag.Bool("generate-config", false, "Generate a sample configuration file and exit")
	flag.Parse()

	// Handle config generation
	if *generateConfig {
		if err := config.GenerateSampleConfig(*configPath); err != nil {
			logger.Fatal("Failed to generate sample config: %v", err)
		}
		logger.Info("Sample configuration file created at: %s", *configPath)
		return
	}

	// .env overrides are optional; deployments without one are normal
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		var configNotFound *config.ConfigNotFoundError
		if errors.As(err, &configNotFound) {
			logger.Fatal("%v", err)
		}
		logger.Fatal("%v", errorutil.LogAndWrap(logger.Get().Logger, "configuration load", err,
			errorutil.ConfigContext(*configPath)...))
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Configuration validation failed: %v", err)
	}

	// Initialize logging
	if err := logger.Initialize(logger.Config{
		Enabled:         cfg.Logging.Enabled,
		Directory:       cfg.Logging.Directory,
		FilenamePattern: cfg.Logging.FilenamePattern,
		Level:           cfg.Logging.Level,
		MaxFiles:        cfg.Logging.MaxFiles,
		MaxSizeMB:       cfg.Logging.MaxSizeMB,
		ConsoleOutput:   cfg.Logging.ConsoleOutput,
	}); err != nil {
		logger.Fatal("Failed to initialize logging: %v", err)
	}

	logger.Info("Andaaz Decorations forecast service starting")
	logger.Debug("Configuration loaded from: %s", *configPath)

	// Persisted forecast cache
	cache, err := store.OpenSQLite(cfg.Cache.Path)
	if err != nil {
		logger.Fatal("Failed to open forecast cache: %v", err)
	}
	defer cache.Close()

	// Outbound provider clients
	forecastClient := api.NewForecastClient()
	forecastClient.SetBaseURL(cfg.Forecast.BaseURL + "/v1")
	forecastClient.SetTimeout(time.Duration(cfg.Forecast.TimeoutSec) * time.Second)
	forecastClient.SetForecastDays(cfg.Forecast.ForecastDays)

	geocoder := api.NewGeocodeClient()
	geocoder.SetBaseURL(cfg.Geocoding.BaseURL)
	geocoder.MinScore = cfg.Geocoding.MinScore
	geocoder.AcceptFirst = cfg.Geocoding.AcceptFirst

	// Place resolution with the configured static fallback
	resolver := &weather.PlaceResolver{
		Fallback: weather.Place{
			Lat:          cfg.Fallback.Latitude,
			Lon:          cfg.Fallback.Longitude,
			TimezoneHint: cfg.Fallback.Timezone,
			DisplayName:  cfg.Fallback.DisplayName,
			Source:       weather.SourceFallback,
		},
	}

	// Refresh orchestration
	orch := engine.New(cache, forecastClient, resolver)
	orch.Cooldown = time.Duration(cfg.Cache.CooldownMinutes) * time.Minute
	orch.StaleAfter = time.Duration(cfg.Cache.StaleMinutes) * time.Minute

	// Periodic stale sweep
	sweeper := scheduler.New(orch, time.Duration(cfg.Cache.SweepMinutes)*time.Minute)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start stale sweep: %v", err)
	}
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "andaaz-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	web.RegisterRoutes(app, orch, geocoder)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("Listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Error("Server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}
}

// getDefaultConfigPath returns a cross-platform default config path
func getDefaultConfigPath() string {
	return filepath.Clean("config.toml")
}
