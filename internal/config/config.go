package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	UnitsMetric   = "metric"
	UnitsStandard = "standard"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port            string
	HTTPTimeout     time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string

	CORSAllowedOrigins []string
	RateLimitPerMinute int

	// Provider credentials. Empty values are allowed at startup; the
	// affected endpoints report a misconfiguration at request time.
	WeatherAPIKey string
	PhotosAPIKey  string
	WeatherUnits  string

	// Provider base URLs, overridable for local fakes.
	WeatherBaseURL     string
	PhotosBaseURL      string
	WikiSummaryBaseURL string
	WikiSearchBaseURL  string
}

// Load reads configuration from the environment, seeded from a .env file in
// the working directory when one exists. Unset values fall back to defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	httpTimeout, err := parseDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.Atoi(envOrDefault("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid RATE_LIMIT_PER_MINUTE")
	}

	units := strings.ToLower(envOrDefault("WEATHER_UNITS", UnitsMetric))
	if units != UnitsMetric && units != UnitsStandard {
		return nil, fmt.Errorf("invalid WEATHER_UNITS %q: want %s or %s", units, UnitsMetric, UnitsStandard)
	}

	format := strings.ToLower(envOrDefault("LOG_FORMAT", "json"))
	if format != "json" && format != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", format)
	}

	cfg := &Config{
		Port:            envOrDefault("PORT", "3000"),
		HTTPTimeout:     httpTimeout,
		ShutdownTimeout: shutdownTimeout,
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       format,

		CORSAllowedOrigins: splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute: rateLimit,

		WeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		PhotosAPIKey:  os.Getenv("UNSPLASH_ACCESS_KEY"),
		WeatherUnits:  units,

		WeatherBaseURL:     envOrDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		PhotosBaseURL:      envOrDefault("PHOTOS_BASE_URL", "https://api.unsplash.com/search/photos"),
		WikiSummaryBaseURL: envOrDefault("WIKI_SUMMARY_BASE_URL", "https://en.wikipedia.org/api/rest_v1/page/summary"),
		WikiSearchBaseURL:  envOrDefault("WIKI_SEARCH_BASE_URL", "https://en.wikipedia.org/w/api.php"),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return nil, errors.New("CORS_ALLOWED_ORIGINS must name at least one origin")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
