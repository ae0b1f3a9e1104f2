package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"dsn": "postgres://localhost/vidhub?sslmode=disable"},
		"port": 8080,
		"ai": {"provider": "gemini", "embed_model": "text-embedding-004", "data": {"api_key": "k"}}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, 1.5, cfg.Search.LexicalBoost)
	require.Equal(t, 0.7, cfg.Search.VectorFoldWeight)
	require.Equal(t, 0.60, cfg.Search.HighConfidenceMinScore)
	require.Equal(t, 1000, cfg.Search.ChunkSize)
	require.Equal(t, 200, cfg.Search.ChunkOverlap)
	require.Equal(t, 20, cfg.Search.DefaultLimit)
	require.Equal(t, "*/5 * * * *", cfg.Jobs.EmbeddingResyncSpec)
}

func TestLoadRejectsMissingDatabase(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "ai": {"provider": "gemini", "embed_model": "m"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingProvider(t *testing.T) {
	path := writeConfig(t, `{"database": {"host": "localhost"}, "port": 8080, "ai": {"embed_model": "m"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"host": "localhost"},
		"port": 8080,
		"ai": {"provider": "openai", "embed_model": "m"},
		"search": {"chunk_size": 500, "chunk_overlap": 50, "max_limit": 25}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 500, cfg.Search.ChunkSize)
	require.Equal(t, 50, cfg.Search.ChunkOverlap)
	require.Equal(t, 25, cfg.Search.MaxLimit)
	require.Equal(t, 1.5, cfg.Search.LexicalBoost)
}
