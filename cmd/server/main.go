package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neexbeast/trip-planner/internal/api"
	"github.com/neexbeast/trip-planner/internal/config"
	"github.com/neexbeast/trip-planner/internal/destination"
	"github.com/neexbeast/trip-planner/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	clock := clockwork.NewRealClock()
	base := destination.NewHTTPTransport(cfg.HTTPTimeout)

	credentials := []api.Credential{
		{Provider: destination.ProviderWeather, Key: cfg.WeatherAPIKey},
		{Provider: destination.ProviderPhotos, Key: cfg.PhotosAPIKey},
	}
	for _, c := range credentials {
		if err := destination.CheckCredential(c.Provider, c.Key); err != nil {
			log.Warn("provider credential missing, its endpoints will fail", "provider", c.Provider)
		}
	}

	// Wire dependencies.
	weather := destination.NewWeatherClientWithURL(
		destination.Instrument(base, destination.ProviderWeather, metrics, clock),
		cfg.WeatherBaseURL, cfg.WeatherAPIKey, cfg.WeatherUnits)
	photos := destination.NewPhotoClientWithURL(
		destination.Instrument(base, destination.ProviderPhotos, metrics, clock),
		cfg.PhotosBaseURL, cfg.PhotosAPIKey)
	wiki := destination.NewEncyclopediaClientWithURLs(
		destination.Instrument(base, destination.ProviderEncyclopedia, metrics, clock),
		cfg.WikiSummaryBaseURL, cfg.WikiSearchBaseURL)

	resolver := destination.NewResolver(wiki, metrics, log)
	aggregator := destination.NewAggregator(weather, photos, resolver, log)
	handlers := api.NewHandlers(weather, photos, resolver, aggregator, log)

	router := api.NewRouter(handlers, api.RouterConfig{
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Credentials:        credentials,
		Metrics:            promhttp.Handler(),
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port, "weather_units", cfg.WeatherUnits)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}
