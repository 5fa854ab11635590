// Package config defines all configuration structures for the TariffScope
// service.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the catalog and
// tariff-data store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds parameters for the catalog read-through cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds parameters for the tariff-data refresh consumer.
type KafkaConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Brokers      []string `mapstructure:"brokers"`
	GroupID      string   `mapstructure:"group_id"`
	RefreshTopic string   `mapstructure:"refresh_topic"`
}

// OpenSearchConfig holds parameters for the keyword search collaborator.
type OpenSearchConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	Index              string   `mapstructure:"index"`
	BulkBatchSize      int      `mapstructure:"bulk_batch_size"`
}

// MilvusConfig holds parameters for the semantic similarity collaborator.
type MilvusConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	DBName       string        `mapstructure:"db_name"`
	Collection   string        `mapstructure:"collection"`
	EmbeddingDim int           `mapstructure:"embedding_dim"`
	DefaultTopK  int           `mapstructure:"default_top_k"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// GeminiConfig holds parameters for the optional LLM collaborator used for
// interpretation, plain-language translation, and justification.  None of
// these calls are required for a correct classification or duty result.
type GeminiConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ScoringWeights holds every tunable factor of the multi-factor scorer.
// The legacy system carried two near-identical engines that differed only in
// these numbers; they are consolidated here so a deployment can adjust
// scoring without code changes.  All values are points on the 0-100
// confidence scale; penalties are stored positive and subtracted.
type ScoringWeights struct {
	LeadingTermBoost        float64 `mapstructure:"leading_term_boost"`
	KeywordOverlapBoost     float64 `mapstructure:"keyword_overlap_boost"`
	DescriptionOverlapBoost float64 `mapstructure:"description_overlap_boost"`

	MaterialMatchBoost      float64 `mapstructure:"material_match_boost"`
	MaterialConflictPenalty float64 `mapstructure:"material_conflict_penalty"`
	AncestorConflictPenalty float64 `mapstructure:"ancestor_conflict_penalty"`

	HeadingMatchBoost     float64 `mapstructure:"heading_match_boost"`
	HeadingExactBoost     float64 `mapstructure:"heading_exact_boost"`
	HeadingMismatchPenalty float64 `mapstructure:"heading_mismatch_penalty"`

	UnmatchedCarveOutPenalty  float64 `mapstructure:"unmatched_carve_out_penalty"`
	UnverifiedCatchAllPenalty float64 `mapstructure:"unverified_catch_all_penalty"`
	InvalidCatchAllPenalty    float64 `mapstructure:"invalid_catch_all_penalty"`

	UnmentionedQualifierUnit float64 `mapstructure:"unmentioned_qualifier_unit"`
	UnmentionedQualifierCap  float64 `mapstructure:"unmentioned_qualifier_cap"`
}

// ClassificationConfig holds engine thresholds, retrieval tunables, scoring
// weights, and feature flags.
type ClassificationConfig struct {
	// ConfidenceThreshold is the score below which the response carries a
	// clarification question instead of a confident answer.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`

	// ConfidenceFloor is the minimum score ever displayed; candidates below
	// it are suppressed from the alternatives list.
	ConfidenceFloor float64 `mapstructure:"confidence_floor"`

	// MaxCandidates bounds the size of the retrieval set per request.
	MaxCandidates int `mapstructure:"max_candidates"`

	// MaxAlternatives bounds the alternatives list in the response.
	MaxAlternatives int `mapstructure:"max_alternatives"`

	// MaxEnrichment caps the fan-out of per-candidate LLM translation
	// calls.  This is a deliberate backpressure policy bounding external
	// cost and latency, not an incidental limit.
	MaxEnrichment int `mapstructure:"max_enrichment"`

	// SemanticPrimaryThreshold is the similarity at or above which semantic
	// hits are kept unconditionally.
	SemanticPrimaryThreshold float64 `mapstructure:"semantic_primary_threshold"`

	// SemanticDiversityThreshold is the lower bar at which the single best
	// hit per chapter is still kept, so one interpretation cannot dominate
	// the candidate set.
	SemanticDiversityThreshold float64 `mapstructure:"semantic_diversity_threshold"`

	// SearchTimeout bounds each collaborator call (semantic search,
	// keyword index).
	SearchTimeout time.Duration `mapstructure:"search_timeout"`

	// EnableSemanticSearch gates the semantic retrieval path; when off the
	// engine goes straight to keyword retrieval.
	EnableSemanticSearch bool `mapstructure:"enable_semantic_search"`

	// EnableLLMEnrichment gates interpretation/translation/justification.
	EnableLLMEnrichment bool `mapstructure:"enable_llm_enrichment"`

	Weights ScoringWeights `mapstructure:"weights"`
}

// DutyConfig holds duty-calculator parameters that are data, not law:
// presentation strings and the universal baseline rate.
type DutyConfig struct {
	// BaselineRate is the universal IEEPA baseline additional rate in
	// percent, applied per the exclusion rules in the tariff domain.
	BaselineRate float64 `mapstructure:"baseline_rate"`

	// DataVersion identifies the tariff data snapshot, echoed in results.
	DataVersion string `mapstructure:"data_version"`

	// Disclaimer is appended to every duty result.
	Disclaimer string `mapstructure:"disclaimer"`
}

// LogConfig mirrors logging.LogConfig at the configuration boundary.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire service.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	OpenSearch     OpenSearchConfig     `mapstructure:"opensearch"`
	Milvus         MilvusConfig         `mapstructure:"milvus"`
	Gemini         GeminiConfig         `mapstructure:"gemini"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Duty           DutyConfig           `mapstructure:"duty"`
	Log            LogConfig            `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required when kafka is enabled")
		}
	}

	if c.OpenSearch.Enabled && len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}

	if c.Milvus.Enabled {
		if c.Milvus.Addr == "" {
			return fmt.Errorf("config: milvus.addr is required when milvus is enabled")
		}
		if c.Milvus.EmbeddingDim < 1 {
			return fmt.Errorf("config: milvus.embedding_dim must be >= 1, got %d", c.Milvus.EmbeddingDim)
		}
	}

	if c.Gemini.Enabled && c.Gemini.APIKey == "" {
		return fmt.Errorf("config: gemini.api_key is required when gemini is enabled")
	}

	cls := c.Classification
	if cls.ConfidenceThreshold < 0 || cls.ConfidenceThreshold > 100 {
		return fmt.Errorf("config: classification.confidence_threshold %.1f is out of range [0, 100]", cls.ConfidenceThreshold)
	}
	if cls.ConfidenceFloor < 0 || cls.ConfidenceFloor > cls.ConfidenceThreshold {
		return fmt.Errorf("config: classification.confidence_floor %.1f must be in [0, threshold]", cls.ConfidenceFloor)
	}
	if cls.MaxEnrichment < 1 {
		return fmt.Errorf("config: classification.max_enrichment must be >= 1, got %d", cls.MaxEnrichment)
	}
	if cls.SemanticDiversityThreshold > cls.SemanticPrimaryThreshold {
		return fmt.Errorf("config: classification.semantic_diversity_threshold must not exceed the primary threshold")
	}

	if c.Duty.BaselineRate < 0 {
		return fmt.Errorf("config: duty.baseline_rate must be >= 0, got %.2f", c.Duty.BaselineRate)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
