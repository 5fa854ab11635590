// Package config provides configuration loading, defaults, and validation
// for the TariffScope service.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "tariffscope"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 12 * time.Hour
	DefaultRedisKeyPrefix = "tariffscope:"

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaGroupID      = "tariffscope-cache"
	DefaultKafkaRefreshTopic = "tariff.catalog.refreshed"

	DefaultOpenSearchIndex = "hts-codes"

	DefaultMilvusAddr       = "localhost:19530"
	DefaultMilvusCollection = "hts_descriptions"
	DefaultEmbeddingDim     = 768
	DefaultMilvusTopK       = 20

	DefaultGeminiModel          = "gemini-1.5-flash"
	DefaultGeminiEmbeddingModel = "text-embedding-004"
	DefaultGeminiTimeout        = 20 * time.Second

	// DefaultConfidenceThreshold is the documented default below which the
	// response includes a clarification question.
	DefaultConfidenceThreshold = 40.0

	// DefaultConfidenceFloor is the documented minimum displayed confidence.
	DefaultConfidenceFloor = 15.0

	// DefaultMaxEnrichment is the documented cap on per-candidate LLM
	// translation fan-out.
	DefaultMaxEnrichment = 8

	DefaultMaxCandidates   = 25
	DefaultMaxAlternatives = 5

	DefaultSemanticPrimaryThreshold   = 0.70
	DefaultSemanticDiversityThreshold = 0.50
	DefaultSearchTimeout              = 5 * time.Second

	// DefaultBaselineRate is the universal IEEPA baseline additional duty.
	DefaultBaselineRate = 10.0

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultDisclaimer is attached to every duty result.
const DefaultDisclaimer = "Advisory estimate only. Rates reflect the loaded tariff data snapshot " +
	"and are not a customs ruling; verify with a licensed broker before entry."

// DefaultScoringWeights returns the consolidated scoring weights.  These are
// the numbers both legacy engine variants converged on, with differences
// resolved in favor of the more complete variant.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		LeadingTermBoost:        50,
		KeywordOverlapBoost:     20,
		DescriptionOverlapBoost: 10,

		MaterialMatchBoost:      30,
		MaterialConflictPenalty: 20,
		AncestorConflictPenalty: 50,

		HeadingMatchBoost:      15,
		HeadingExactBoost:      30,
		HeadingMismatchPenalty: 50,

		UnmatchedCarveOutPenalty:  40,
		UnverifiedCatchAllPenalty: 5,
		InvalidCatchAllPenalty:    25,

		UnmentionedQualifierUnit: 10,
		UnmentionedQualifierCap:  40,
	}
}

// ApplyDefaults fills every zero-value field in cfg with the service
// default.  Fields already set by the caller are left unchanged so explicit
// configuration always wins.  It must be called after unmarshalling and
// before Validate() so optional-but-defaulted fields are never seen as
// missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "tariffscope"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	// ── Redis ─────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	// ── Kafka ─────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.RefreshTopic == "" {
		cfg.Kafka.RefreshTopic = DefaultKafkaRefreshTopic
	}

	// ── OpenSearch ────────────────────────────────────────────────────────
	if cfg.OpenSearch.Index == "" {
		cfg.OpenSearch.Index = DefaultOpenSearchIndex
	}
	if cfg.OpenSearch.BulkBatchSize == 0 {
		cfg.OpenSearch.BulkBatchSize = 500
	}

	// ── Milvus ────────────────────────────────────────────────────────────
	if cfg.Milvus.Addr == "" {
		cfg.Milvus.Addr = DefaultMilvusAddr
	}
	if cfg.Milvus.DBName == "" {
		cfg.Milvus.DBName = "default"
	}
	if cfg.Milvus.Collection == "" {
		cfg.Milvus.Collection = DefaultMilvusCollection
	}
	if cfg.Milvus.EmbeddingDim == 0 {
		cfg.Milvus.EmbeddingDim = DefaultEmbeddingDim
	}
	if cfg.Milvus.DefaultTopK == 0 {
		cfg.Milvus.DefaultTopK = DefaultMilvusTopK
	}
	if cfg.Milvus.Timeout == 0 {
		cfg.Milvus.Timeout = 10 * time.Second
	}

	// ── Gemini ────────────────────────────────────────────────────────────
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = DefaultGeminiModel
	}
	if cfg.Gemini.EmbeddingModel == "" {
		cfg.Gemini.EmbeddingModel = DefaultGeminiEmbeddingModel
	}
	if cfg.Gemini.Timeout == 0 {
		cfg.Gemini.Timeout = DefaultGeminiTimeout
	}

	// ── Classification ────────────────────────────────────────────────────
	cls := &cfg.Classification
	if cls.ConfidenceThreshold == 0 {
		cls.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cls.ConfidenceFloor == 0 {
		cls.ConfidenceFloor = DefaultConfidenceFloor
	}
	if cls.MaxCandidates == 0 {
		cls.MaxCandidates = DefaultMaxCandidates
	}
	if cls.MaxAlternatives == 0 {
		cls.MaxAlternatives = DefaultMaxAlternatives
	}
	if cls.MaxEnrichment == 0 {
		cls.MaxEnrichment = DefaultMaxEnrichment
	}
	if cls.SemanticPrimaryThreshold == 0 {
		cls.SemanticPrimaryThreshold = DefaultSemanticPrimaryThreshold
	}
	if cls.SemanticDiversityThreshold == 0 {
		cls.SemanticDiversityThreshold = DefaultSemanticDiversityThreshold
	}
	if cls.SearchTimeout == 0 {
		cls.SearchTimeout = DefaultSearchTimeout
	}
	if cls.Weights == (ScoringWeights{}) {
		cls.Weights = DefaultScoringWeights()
	}

	// ── Duty ──────────────────────────────────────────────────────────────
	if cfg.Duty.BaselineRate == 0 {
		cfg.Duty.BaselineRate = DefaultBaselineRate
	}
	if cfg.Duty.Disclaimer == "" {
		cfg.Duty.Disclaimer = DefaultDisclaimer
	}
	if cfg.Duty.DataVersion == "" {
		cfg.Duty.DataVersion = "unversioned"
	}

	// ── Log ───────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
	if len(cfg.Log.ErrorOutputPaths) == 0 {
		cfg.Log.ErrorOutputPaths = []string{"stderr"}
	}
}

// NewDefaultConfig returns a Config populated entirely from defaults.  It is
// valid for local development against localhost infrastructure.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
