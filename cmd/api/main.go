// Package main provides the entrypoint for the EcoBalance API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ecobalance/ecobalance/internal/api"
	"github.com/ecobalance/ecobalance/internal/api/middleware"
	"github.com/ecobalance/ecobalance/internal/app"
	"github.com/ecobalance/ecobalance/internal/attribution"
	"github.com/ecobalance/ecobalance/internal/config"
	"github.com/ecobalance/ecobalance/internal/datastore"
	"github.com/ecobalance/ecobalance/internal/featureflags"
	"github.com/ecobalance/ecobalance/internal/preferences"
	"github.com/ecobalance/ecobalance/internal/provider/resilience"
	"github.com/ecobalance/ecobalance/internal/telemetry"
	"github.com/ecobalance/ecobalance/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "ecobalance-api"

// subscriber runs the refresh subscription until its context ends.
type subscriber interface {
	Start(ctx context.Context) error
	Close() error
}

// openSubscriber connects the refresh subscription. Tests replace it.
var openSubscriber = func(ctx context.Context, cfg config.PubSubConfig, r worker.Refresher, log zerolog.Logger) (subscriber, error) {
	h, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        cfg.ProjectID,
		SubscriptionName: cfg.Subscription,
		Refresher:        r,
		Logger:           log,
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func main() {
	cfg, err := config.Load(serviceName, Version)
	log := newLogger(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting EcoBalance API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.IsDevelopment() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	tp, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.Telemetry.Enabled {
		log.Info().Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		return err
	}

	flags := featureflags.NewService(featureflags.ServiceConfig{
		Logger:   log,
		CacheTTL: time.Minute,
	})
	overrides, err := featureflags.ParseOverrides(cfg.FeatureFlags)
	if err != nil {
		return err
	}
	if err := flags.Apply(ctx, overrides); err != nil {
		return err
	}

	registry := resilience.NewRegistry()
	var feedClient *resilience.Client
	if strings.HasPrefix(cfg.AttributionSource, "http://") || strings.HasPrefix(cfg.AttributionSource, "https://") {
		feedClient = resilience.NewClient(resilience.ClientConfig{
			Name:     "attribution",
			Timeout:  cfg.FeedTimeout,
			Registry: registry,
			Logger:   log,
		})
	}
	source := attribution.NewSource(cfg.AttributionSource, feedClient)
	log.Info().Str("source", source.String()).Msg("attribution source configured")

	prefs := preferences.Open(ctx, cfg.Preferences, log)
	if closer, ok := prefs.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	store := datastore.New(datastore.Config{
		Source: source,
		Flags:  flags,
		Logger: log,
	})

	application := app.New(app.Config{
		Store:       store,
		Flags:       flags,
		Prefs:       prefs,
		Logger:      log,
		BannerTTL:   cfg.BannerTTL,
		ChartSize:   cfg.ChartSize,
		DemoLatency: cfg.DemoLatency,
	})
	// A failed start keeps serving the modules that initialized; readiness
	// reports 503 and the banner carries the message.
	if err := application.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application failed to start")
	}
	defer func() {
		_ = application.Shutdown(context.Background())
	}()

	var sub subscriber
	if cfg.PubSub.Enabled() {
		sub, err = openSubscriber(ctx, cfg.PubSub, application, log)
		if err != nil {
			return err
		}
		defer sub.Close()
	}

	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        httpMetrics,
		App:            application,
		Registry:       registry,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequireTLS:     cfg.RequireTLS,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if sub != nil {
		g.Go(func() error {
			return sub.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
