// The apiserver command runs the TariffScope HTTP API: classification,
// duty calculation, and catalog lookups.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clearfreight/tariffscope/internal/application/classification"
	"github.com/clearfreight/tariffscope/internal/application/duty"
	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/database/postgres"
	"github.com/clearfreight/tariffscope/internal/infrastructure/database/postgres/repositories"
	"github.com/clearfreight/tariffscope/internal/infrastructure/database/redis"
	"github.com/clearfreight/tariffscope/internal/infrastructure/llm/gemini"
	"github.com/clearfreight/tariffscope/internal/infrastructure/messaging/kafka"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/prometheus"
	"github.com/clearfreight/tariffscope/internal/infrastructure/search/milvus"
	"github.com/clearfreight/tariffscope/internal/infrastructure/search/opensearch"
	httpserver "github.com/clearfreight/tariffscope/internal/interfaces/http"
	"github.com/clearfreight/tariffscope/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variable injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("Starting TariffScope API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server terminated", logging.Err(err))
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres is the system of record; nothing works without it.
	if err := postgres.RunMigrations(cfg.Database, logger); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	pg, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pg.Close()

	catalogRepo := catalog.Repository(repositories.NewCatalogRepository(pg.Pool(), logger))
	tariffRepo := repositories.NewTariffRepository(pg.Pool(), logger)

	collector := prometheus.NewCollector("tariffscope")
	metrics := prometheus.NewAppMetrics(collector)

	healthChecks := map[string]handlers.HealthChecker{
		"postgres": pg.HealthCheck,
	}

	// Redis wraps the catalog in a read-through cache when enabled.
	var cachedCatalog *redis.CachedCatalog
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()

		cache := redis.NewCache(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.DefaultTTL, logger)
		cachedCatalog = redis.NewCachedCatalog(catalogRepo, cache, logger, metrics)
		catalogRepo = cachedCatalog
		healthChecks["redis"] = redisClient.HealthCheck
	}

	// OpenSearch takes over keyword search when enabled; the repository
	// remains the fallback.
	if cfg.OpenSearch.Enabled {
		osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
		if err != nil {
			return fmt.Errorf("opensearch: %w", err)
		}
		catalogRepo = opensearch.NewKeywordSearcher(catalogRepo, osClient, logger)
		healthChecks["opensearch"] = osClient.HealthCheck
	}

	// Gemini supplies interpretation, translation, justification, and the
	// embeddings behind semantic search.  All of it is optional.
	var enricher classification.Enricher
	var embedder *gemini.Embedder
	if cfg.Gemini.Enabled {
		geminiClient, err := gemini.NewClient(ctx, cfg.Gemini, logger)
		if err != nil {
			logger.Warn("Gemini unavailable, continuing without LLM enrichment", logging.Err(err))
		} else {
			defer geminiClient.Close()
			enricher = gemini.NewEnricher(geminiClient, logger, metrics)
			embedder = gemini.NewEmbedder(geminiClient)
		}
	}

	var semantic classification.SemanticSearcher
	if cfg.Milvus.Enabled && embedder != nil {
		milvusClient, err := milvus.NewClient(ctx, cfg.Milvus, logger)
		if err != nil {
			logger.Warn("Milvus unavailable, continuing without semantic search", logging.Err(err))
		} else {
			defer milvusClient.Close()
			semantic = milvus.NewSearcher(milvusClient, embedder, logger)
		}
	}

	dutyService := duty.NewService(tariffRepo, tariffRepo, cfg.Duty, logger, metrics)
	classifyService := classification.NewService(classification.Deps{
		Catalog:  catalogRepo,
		Semantic: semantic,
		Enricher: enricher,
		Duty:     dutyService,
		Metrics:  metrics,
		Config:   cfg.Classification,
		Logger:   logger,
	})

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ClassifyHandler: handlers.NewClassifyHandler(classifyService, logger),
		DutyHandler:     handlers.NewDutyHandler(dutyService, catalogRepo, logger),
		CatalogHandler:  handlers.NewCatalogHandler(catalogRepo, logger),
		HealthHandler:   handlers.NewHealthHandler(healthChecks, version, logger),
		MetricsHandler:  collector.Handler(),
		Metrics:         metrics,
		Mode:            cfg.Server.Mode,
		Logger:          logger,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	// The Kafka consumer invalidates the catalog cache when a tariff-data
	// refresh is published.
	if cfg.Kafka.Enabled {
		consumer := kafka.NewRefreshConsumer(cfg.Kafka, func(ctx context.Context, ev *kafka.RefreshEvent) error {
			logger.Info("Tariff data refreshed",
				logging.String("source", ev.Source),
				logging.String("data_version", ev.DataVersion))
			if cachedCatalog != nil {
				return cachedCatalog.Invalidate(ctx)
			}
			return nil
		}, logger)
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		defer func() {
			if err := consumer.Stop(); err != nil {
				logger.Warn("Kafka consumer stop failed", logging.Err(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}

// loadConfig reads the config file when present, otherwise falls back to
// environment variables.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	fmt.Fprintf(os.Stderr, "warning: config file %s not found, using environment\n", path)
	return config.LoadFromEnv()
}
