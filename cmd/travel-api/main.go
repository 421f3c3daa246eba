package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/travel-assistant/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/travel-assistant/internal/adapter/kafka"
	"github.com/couchcryptid/travel-assistant/internal/adapter/llm"
	"github.com/couchcryptid/travel-assistant/internal/adapter/openmeteo"
	"github.com/couchcryptid/travel-assistant/internal/chat"
	"github.com/couchcryptid/travel-assistant/internal/config"
	"github.com/couchcryptid/travel-assistant/internal/observability"
	"github.com/couchcryptid/travel-assistant/internal/weather"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	model, err := llm.New(cfg, metrics)
	if err != nil {
		logger.Error("failed to create language model", "error", err)
		os.Exit(1)
	}
	logger.Info("language model configured", "provider", cfg.LLMProvider)

	meteo := openmeteo.NewClient(openmeteo.Options{
		GeocodingURL: cfg.GeocodingURL,
		ForecastURL:  cfg.ForecastURL,
		ForecastDays: cfg.WeatherForecastDays,
		Timeout:      cfg.WeatherTimeout,
	}, logger, metrics)
	cache := weather.NewCache(cfg.WeatherCacheTTL, cfg.WeatherCacheSize, clock)
	gateway := weather.NewGateway(meteo, meteo, cache, clock, logger, metrics)

	opts := chat.Options{
		ContextDays:          cfg.WeatherContextDays,
		LocationHistoryTurns: cfg.LocationHistoryTurns,
		Clock:                clock,
	}

	// Turn events are published only when Kafka is configured.
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Publisher = writer
		logger.Info("turn event publishing enabled", "topic", cfg.KafkaTurnsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("turn event publishing disabled")
	}

	svc := chat.NewService(model, gateway, chat.NewSessionStore(clock, cfg.SessionIdleTTL), logger, metrics, opts)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
