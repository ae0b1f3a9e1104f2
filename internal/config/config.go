package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database      DatabaseConfig   `json:"database"`
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	RateLimitMs   int              `json:"rate_limit_ms"`
	AI            AIConfig         `json:"ai"`
	Search        SearchConfig     `json:"search"`
	Jobs          JobsConfig       `json:"jobs"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider             string      `json:"provider"`
	Data                 interface{} `json:"data"`
	EmbedModel           string      `json:"embed_model"`
	Timeout              int         `json:"timeout"`
	EmbedCacheSize       int         `json:"embed_cache_size"`
	EmbedCacheTTLMinutes int         `json:"embed_cache_ttl_minutes"`
	EmbedCacheMaxAgeDays int         `json:"embed_cache_max_age_days"`
}

// SearchConfig carries the ranking knobs. The boost weights preserve the
// ordering lexical > vector > semantic > tag; the exact values are tunable
// business configuration, not algorithmic requirements.
type SearchConfig struct {
	LexicalBoost           float64 `json:"lexical_boost"`
	SemanticFoldWeight     float64 `json:"semantic_fold_weight"`
	TagFoldWeight          float64 `json:"tag_fold_weight"`
	VectorFoldWeight       float64 `json:"vector_fold_weight"`
	HighConfidenceMinScore float64 `json:"high_confidence_min_score"`
	LowConfidenceMinScore  float64 `json:"low_confidence_min_score"`
	VectorScoreFloor       float64 `json:"vector_score_floor"`
	ChunkSize              int     `json:"chunk_size"`
	ChunkOverlap           int     `json:"chunk_overlap"`
	MaxQueryEmbedChars     int     `json:"max_query_embed_chars"`
	RelatedCacheSize       int     `json:"related_cache_size"`
	RelatedCacheTTLMinutes int     `json:"related_cache_ttl_minutes"`
	DefaultLimit           int     `json:"default_limit"`
	MaxLimit               int     `json:"max_limit"`
}

type JobsConfig struct {
	EmbeddingResyncSpec  string `json:"embedding_resync_spec"`
	EmbeddingResyncBatch int    `json:"embedding_resync_batch"`
	CacheCleanupSpec     string `json:"cache_cleanup_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 30
	}
	if cfg.AI.EmbedCacheSize == 0 {
		cfg.AI.EmbedCacheSize = 4096
	}
	if cfg.AI.EmbedCacheTTLMinutes == 0 {
		cfg.AI.EmbedCacheTTLMinutes = 120
	}
	if cfg.AI.EmbedCacheMaxAgeDays == 0 {
		cfg.AI.EmbedCacheMaxAgeDays = 30
	}
	cfg.Search = withSearchDefaults(cfg.Search)
	if cfg.Jobs.EmbeddingResyncSpec == "" {
		cfg.Jobs.EmbeddingResyncSpec = "*/5 * * * *"
	}
	if cfg.Jobs.EmbeddingResyncBatch == 0 {
		cfg.Jobs.EmbeddingResyncBatch = 10
	}
	if cfg.Jobs.CacheCleanupSpec == "" {
		cfg.Jobs.CacheCleanupSpec = "0 4 * * *"
	}
	return &cfg, nil
}

func withSearchDefaults(s SearchConfig) SearchConfig {
	if s.LexicalBoost == 0 {
		s.LexicalBoost = 1.5
	}
	if s.SemanticFoldWeight == 0 {
		s.SemanticFoldWeight = 0.5
	}
	if s.TagFoldWeight == 0 {
		s.TagFoldWeight = 0.3
	}
	if s.VectorFoldWeight == 0 {
		s.VectorFoldWeight = 0.7
	}
	if s.HighConfidenceMinScore == 0 {
		s.HighConfidenceMinScore = 0.60
	}
	if s.LowConfidenceMinScore == 0 {
		s.LowConfidenceMinScore = 0.40
	}
	if s.VectorScoreFloor == 0 {
		s.VectorScoreFloor = 0.5
	}
	if s.ChunkSize == 0 {
		s.ChunkSize = 1000
	}
	if s.ChunkOverlap == 0 {
		s.ChunkOverlap = 200
	}
	if s.MaxQueryEmbedChars == 0 {
		s.MaxQueryEmbedChars = 2000
	}
	if s.RelatedCacheSize == 0 {
		s.RelatedCacheSize = 1024
	}
	if s.RelatedCacheTTLMinutes == 0 {
		s.RelatedCacheTTLMinutes = 10
	}
	if s.DefaultLimit == 0 {
		s.DefaultLimit = 20
	}
	if s.MaxLimit == 0 {
		s.MaxLimit = 100
	}
	return s
}
