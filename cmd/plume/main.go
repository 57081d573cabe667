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
	"github.com/joho/godotenv"

	"github.com/couchcryptid/plume-impact-service/internal/adapter/catalog"
	httpadapter "github.com/couchcryptid/plume-impact-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/plume-impact-service/internal/adapter/kafka"
	"github.com/couchcryptid/plume-impact-service/internal/adapter/nws"
	"github.com/couchcryptid/plume-impact-service/internal/adapter/overpass"
	"github.com/couchcryptid/plume-impact-service/internal/config"
	"github.com/couchcryptid/plume-impact-service/internal/domain"
	"github.com/couchcryptid/plume-impact-service/internal/observability"
	"github.com/couchcryptid/plume-impact-service/internal/pipeline"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	chemicals, err := catalog.Load(cfg.ChemicalCatalogPath)
	if err != nil {
		logger.Error("failed to load chemical catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("chemical catalog loaded", "path", cfg.ChemicalCatalogPath, "entries", chemicals.Len())

	builder, err := domain.NewPlumeBuilder(cfg.PlumeGeometry, cfg.PlumeSamples, cfg.PlumeWidthMultiplier)
	if err != nil {
		logger.Error("failed to select plume geometry", "error", err)
		os.Exit(1)
	}

	// Weather lookup (feature-flagged via NWS_ENABLED).
	var weather domain.WeatherProvider
	if cfg.NWSEnabled {
		client := nws.NewClient(cfg.NWSBaseURL, cfg.NWSUserAgent, cfg.NWSTimeout, metrics, logger)
		weather = nws.NewCachedProvider(client, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, clockwork.NewRealClock(), metrics)
		metrics.LookupEnabled.WithLabelValues("nws").Set(1)
		logger.Info("nws weather lookup enabled", "cache_size", cfg.WeatherCacheSize, "ttl", cfg.WeatherCacheTTL, "timeout", cfg.NWSTimeout)
	} else {
		metrics.LookupEnabled.WithLabelValues("nws").Set(0)
		logger.Info("nws weather lookup disabled")
	}

	// Receptor lookup (feature-flagged via OVERPASS_ENABLED).
	var receptors domain.ReceptorFinder
	if cfg.OverpassEnabled {
		client := overpass.NewClient(cfg.OverpassURL, cfg.OverpassTimeout, metrics, logger)
		receptors = overpass.NewCachedFinder(client, cfg.ReceptorCacheSize, metrics)
		metrics.LookupEnabled.WithLabelValues("overpass").Set(1)
		logger.Info("overpass receptor lookup enabled", "cache_size", cfg.ReceptorCacheSize, "timeout", cfg.OverpassTimeout)
	} else {
		metrics.LookupEnabled.WithLabelValues("overpass").Set(0)
		logger.Info("overpass receptor lookup disabled")
	}

	assessor := domain.NewAssessor(builder, cfg.PlumeLengthMeters, chemicals)
	transformer := pipeline.NewTransformer(assessor, weather, receptors, cfg.ReceptorSearchRadiusMeters, logger)
	store := pipeline.NewLatestStore()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	loader := pipeline.NewPublishingLoader(writer, store, metrics, logger)

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	api := httpadapter.NewAPI(transformer, store, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, api, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start assessment pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
