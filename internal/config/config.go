// Package config reads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecobalance/ecobalance/internal/attribution"
	"github.com/ecobalance/ecobalance/internal/charts"
	"github.com/ecobalance/ecobalance/internal/preferences"
	"github.com/ecobalance/ecobalance/internal/telemetry"
)

// Config is the full service configuration.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// AttributionSource is a file path or an http(s) URL.
	AttributionSource string
	FeedTimeout       time.Duration

	// FeatureFlags are overrides in "key=bool,key=bool" form.
	FeatureFlags string

	CORSAllowedOrigins []string
	RequireTLS         bool

	BannerTTL   time.Duration
	ChartSize   charts.Size
	DemoLatency time.Duration

	Preferences preferences.Config
	PubSub      PubSubConfig
	Telemetry   telemetry.Config
}

// PubSubConfig enables the refresh worker when ProjectID and Subscription
// are set.
type PubSubConfig struct {
	ProjectID    string
	Topic        string
	Subscription string
}

// Enabled reports whether the subscriber should run.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != "" && c.Subscription != ""
}

// Load reads an optional .env file and then the environment.
func Load(serviceName, version string, files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(serviceName, version), nil
}

// FromEnv creates a Config from environment variables. Unparseable values
// fall back to their defaults.
func FromEnv(serviceName, version string) Config {
	env := getEnvOrDefault("APP_ENV", "development")

	return Config{
		Port:               getEnvOrDefault("APP_PORT", "8080"),
		Environment:        env,
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		AttributionSource:  getEnvOrDefault("ATTRIBUTION_SOURCE", attribution.DefaultLocation),
		FeedTimeout:        getDuration("ATTRIBUTION_TIMEOUT", 10*time.Second),
		FeatureFlags:       os.Getenv("FEATURE_FLAGS"),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		RequireTLS:         getBool("REQUIRE_TLS", false),
		BannerTTL:          getDuration("BANNER_TTL", 10*time.Second),
		ChartSize: charts.Size{
			Width:  getInt("CHART_WIDTH", charts.DefaultSize.Width),
			Height: getInt("CHART_HEIGHT", charts.DefaultSize.Height),
		},
		DemoLatency: getDuration("DEMO_LATENCY", 1500*time.Millisecond),
		Preferences: preferences.Config{
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getInt("REDIS_DB", 0),
			Prefix:        getEnvOrDefault("REDIS_PREFIX", "ecobalance:"),
			TTL:           getDuration("PREFERENCES_TTL", 30*24*time.Hour),
		},
		PubSub: PubSubConfig{
			ProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
			Topic:        getEnvOrDefault("PUBSUB_TOPIC", "ecobalance-refresh"),
			Subscription: os.Getenv("PUBSUB_SUBSCRIPTION"),
		},
		Telemetry: telemetry.Config{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Environment:    env,
			OTLPEndpoint:   getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Enabled:        getBool("OTEL_ENABLED", false),
			SampleRatio:    getFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

// IsDevelopment reports whether the service runs locally.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
