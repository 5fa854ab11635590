// The indexer command builds the search collaborators from the catalog in
// Postgres: the OpenSearch keyword index and the Milvus embedding
// collection.  It is run after each tariff-data refresh.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/database/postgres"
	"github.com/clearfreight/tariffscope/internal/infrastructure/database/postgres/repositories"
	"github.com/clearfreight/tariffscope/internal/infrastructure/llm/gemini"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/internal/infrastructure/search/milvus"
	"github.com/clearfreight/tariffscope/internal/infrastructure/search/opensearch"
)

const defaultConfigPath = "configs/config.yaml"

// embeddingBatchSize bounds one Milvus upsert and the Gemini call burst
// preceding it.
const embeddingBatchSize = 64

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	keyword := flag.Bool("keyword", true, "rebuild the OpenSearch keyword index")
	semantic := flag.Bool("semantic", true, "rebuild the Milvus embedding collection")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
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

	if err := run(cfg, logger, *keyword, *semantic); err != nil {
		logger.Fatal("Indexing failed", logging.Err(err))
	}
}

func run(cfg *config.Config, logger logging.Logger, keyword, semantic bool) error {
	ctx := context.Background()

	pg, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pg.Close()
	repo := repositories.NewCatalogRepository(pg.Pool(), logger)

	entries, err := loadCatalog(ctx, repo)
	if err != nil {
		return err
	}
	logger.Info("Catalog loaded", logging.Int("entries", len(entries)))

	if keyword {
		if !cfg.OpenSearch.Enabled {
			return fmt.Errorf("opensearch is disabled in configuration")
		}
		if err := buildKeywordIndex(ctx, cfg, logger, entries); err != nil {
			return err
		}
	}

	if semantic {
		if !cfg.Milvus.Enabled || !cfg.Gemini.Enabled {
			return fmt.Errorf("milvus and gemini must both be enabled for semantic indexing")
		}
		if err := buildEmbeddings(ctx, cfg, logger, entries); err != nil {
			return err
		}
	}

	return nil
}

// loadCatalog reads every entry chapter by chapter.
func loadCatalog(ctx context.Context, repo *repositories.CatalogRepository) ([]*catalog.CodeEntry, error) {
	var entries []*catalog.CodeEntry
	for chapter := 1; chapter <= 99; chapter++ {
		batch, err := repo.GetByPrefix(ctx, fmt.Sprintf("%02d", chapter))
		if err != nil {
			return nil, fmt.Errorf("loading chapter %02d: %w", chapter, err)
		}
		entries = append(entries, batch...)
	}
	return entries, nil
}

func buildKeywordIndex(ctx context.Context, cfg *config.Config, logger logging.Logger, entries []*catalog.CodeEntry) error {
	client, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
	if err != nil {
		return fmt.Errorf("opensearch: %w", err)
	}

	indexer := opensearch.NewIndexer(client, cfg.OpenSearch.BulkBatchSize, logger)
	if err := indexer.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensuring index: %w", err)
	}

	indexed, err := indexer.IndexEntries(ctx, entries)
	if err != nil {
		return fmt.Errorf("indexing entries: %w", err)
	}
	logger.Info("Keyword index built", logging.Int("indexed", indexed))
	return nil
}

func buildEmbeddings(ctx context.Context, cfg *config.Config, logger logging.Logger, entries []*catalog.CodeEntry) error {
	geminiClient, err := gemini.NewClient(ctx, cfg.Gemini, logger)
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	defer geminiClient.Close()
	embedder := gemini.NewEmbedder(geminiClient)

	milvusClient, err := milvus.NewClient(ctx, cfg.Milvus, logger)
	if err != nil {
		return fmt.Errorf("milvus: %w", err)
	}
	defer milvusClient.Close()

	if err := milvusClient.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("ensuring collection: %w", err)
	}

	// Only rate-bearing entries are searched semantically.
	var targets []*catalog.CodeEntry
	for _, entry := range entries {
		if entry.Level == catalog.LevelTariffLine || entry.Level == catalog.LevelStatistical {
			targets = append(targets, entry)
		}
	}

	var embedded int
	for start := 0; start < len(targets); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(targets) {
			end = len(targets)
		}

		codes := make([]string, 0, end-start)
		vectors := make([][]float32, 0, end-start)
		for _, entry := range targets[start:end] {
			vector, err := embedder.Embed(ctx, embeddingText(entry))
			if err != nil {
				logger.Warn("Embedding failed, skipping entry",
					logging.String("code", entry.Code), logging.Err(err))
				continue
			}
			codes = append(codes, entry.Code)
			vectors = append(vectors, vector)
		}
		if len(codes) == 0 {
			continue
		}

		if err := milvusClient.InsertEmbeddings(ctx, codes, vectors); err != nil {
			return fmt.Errorf("inserting embeddings: %w", err)
		}
		embedded += len(codes)
		logger.Info("Embedding progress",
			logging.Int("embedded", embedded), logging.Int("total", len(targets)))
	}

	logger.Info("Embedding collection built", logging.Int("embedded", embedded))
	return nil
}

// embeddingText is the text embedded for one entry: its description plus
// its curated keywords.
func embeddingText(entry *catalog.CodeEntry) string {
	parts := append([]string{entry.Description}, entry.Keywords...)
	return strings.Join(parts, " ")
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
