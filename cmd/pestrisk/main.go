package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/pest-risk/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/pest-risk/internal/adapter/kafka"
	"github.com/couchcryptid/pest-risk/internal/adapter/openweather"
	"github.com/couchcryptid/pest-risk/internal/adapter/postgres"
	redisadapter "github.com/couchcryptid/pest-risk/internal/adapter/redis"
	"github.com/couchcryptid/pest-risk/internal/adapter/reportfile"
	"github.com/couchcryptid/pest-risk/internal/cli"
	"github.com/couchcryptid/pest-risk/internal/config"
	"github.com/couchcryptid/pest-risk/internal/domain"
	"github.com/couchcryptid/pest-risk/internal/observability"
	"github.com/couchcryptid/pest-risk/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	catalog, table := domain.DefaultCatalog(), domain.DefaultRecommendations()
	if cfg.CropCatalogPath != "" {
		catalog, table, err = domain.LoadCatalogFile(cfg.CropCatalogPath)
		if err != nil {
			logger.Error("failed to load crop catalog", "path", cfg.CropCatalogPath, "error", err)
			os.Exit(1)
		}
		logger.Info("crop catalog loaded", "path", cfg.CropCatalogPath, "crops", catalog.Len())
	}

	// Weather provider, cached unless WEATHER_CACHE_TTL=0.
	var weather domain.WeatherProvider = openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.WeatherCountry, cfg.WeatherTimeout, metrics, logger)
	if cfg.WeatherCacheTTL > 0 {
		weather = openweather.NewCachedProvider(weather, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, clockwork.NewRealClock(), metrics)
		logger.Info("weather cache enabled", "size", cfg.WeatherCacheSize, "ttl", cfg.WeatherCacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sinks []pipeline.Sink
	var closers []func()

	if cfg.DatabaseURL != "" {
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			logger.Error("failed to prepare database schema", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, pipeline.Persistent(store))
		closers = append(closers, store.Close)
	} else {
		logger.Warn("DATABASE_URL not set, alerts will not be persisted to a database")
	}

	jsonSink := reportfile.NewJSONSink(cfg.ReportDir)
	full := reportfile.NewFullTextSink(cfg.ReportDir)
	summary := reportfile.NewSummaryTextSink(cfg.ReportDir)
	sinks = append(sinks, jsonSink, full, summary)

	if len(cfg.KafkaBrokers) > 0 {
		writer := kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		closers = append(closers, func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		})
	}

	if cfg.RedisAddr != "" {
		publisher, err := redisadapter.NewPublisher(ctx, cfg)
		if err != nil {
			logger.Error("redis unavailable, alert publishing disabled", "error", err)
		} else {
			sinks = append(sinks, publisher)
			closers = append(closers, func() {
				if err := publisher.Close(); err != nil {
					logger.Error("redis close error", "error", err)
				}
			})
		}
	}

	evaluator := pipeline.NewEvaluator(catalog, table, weather, logger, metrics)
	emitter := pipeline.NewEmitter(logger, metrics, sinks...)
	logger.Info("sinks configured", "sinks", emitter.Sinks())

	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		history := func() ([]domain.AlertRecord, error) { return reportfile.ReadJSON(jsonSink.Path()) }
		srv = httpadapter.NewServer(cfg.MetricsAddr, evaluator, prometheus.DefaultGatherer, history, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	session := cli.NewSession(os.Stdin, os.Stdout, evaluator, emitter, cli.Paths{
		JSON:    jsonSink.Path(),
		Full:    full.Path(),
		Summary: summary.Path(),
	}, logger)
	if err := session.Run(ctx); err != nil {
		logger.Error("session error", "error", err)
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}

	logger.Info("shutdown complete")
}
