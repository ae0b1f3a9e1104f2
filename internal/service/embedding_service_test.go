package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/vidhub/internal/config"
	"github.com/xxxsen/vidhub/internal/model"
)

type recordingEmbedder struct {
	texts []string
	err   error
}

func (e *recordingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.texts = append(e.texts, text)
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *recordingEmbedder) ModelName() string {
	return "test-model"
}

type fakeIndex struct {
	upserts   map[string]model.ChunkMetadata
	hits      []model.ChunkHit
	gotTopK   int
	idsByVid  map[string][]string
	deleted   []string
	upsertErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		upserts:  make(map[string]model.ChunkMetadata),
		idsByVid: make(map[string][]string),
	}
}

func (f *fakeIndex) Upsert(ctx context.Context, id string, vector []float32, meta model.ChunkMetadata) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts[id] = meta
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int) ([]model.ChunkHit, error) {
	f.gotTopK = topK
	return f.hits, nil
}

func (f *fakeIndex) ListIDsByVideo(ctx context.Context, videoID string) ([]string, error) {
	return f.idsByVid[videoID], nil
}

func (f *fakeIndex) DeleteByIDs(ctx context.Context, ids []string) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func embedTestConfig() config.SearchConfig {
	cfg := testSearchConfig()
	cfg.ChunkSize = 1000
	cfg.ChunkOverlap = 200
	cfg.MaxQueryEmbedChars = 2000
	return cfg
}

func TestEmbedAndStoreDeterministicIDs(t *testing.T) {
	embedder := &recordingEmbedder{}
	index := newFakeIndex()
	svc := NewEmbeddingService(embedder, index, embedTestConfig())

	transcript := strings.Repeat("a", 2500)
	count, err := svc.EmbedAndStore(context.Background(), "v1", transcript, "title", "desc", []string{"go", "docker"})
	require.NoError(t, err)
	require.Equal(t, 4, count)
	for i := 0; i < 4; i++ {
		meta, ok := index.upserts[fmt.Sprintf("v1-chunk-%d", i)]
		require.True(t, ok, "missing chunk %d", i)
		require.Equal(t, "v1", meta.VideoID)
		require.Equal(t, i, meta.ChunkIndex)
		require.Equal(t, "go,docker", meta.Tags)
	}
}

func TestEmbedAndStoreRerunOverwrites(t *testing.T) {
	embedder := &recordingEmbedder{}
	index := newFakeIndex()
	svc := NewEmbeddingService(embedder, index, embedTestConfig())

	_, err := svc.EmbedAndStore(context.Background(), "v1", "short transcript", "title", "desc", nil)
	require.NoError(t, err)
	_, err = svc.EmbedAndStore(context.Background(), "v1", "short transcript", "title", "desc", nil)
	require.NoError(t, err)
	require.Len(t, index.upserts, 1)
}

func TestEmbedAndStoreProviderError(t *testing.T) {
	embedder := &recordingEmbedder{err: fmt.Errorf("quota exceeded")}
	index := newFakeIndex()
	svc := NewEmbeddingService(embedder, index, embedTestConfig())

	count, err := svc.EmbedAndStore(context.Background(), "v1", "short transcript", "title", "desc", nil)
	require.Error(t, err)
	require.Equal(t, 0, count)
}

func TestQueryBestChunkPerVideo(t *testing.T) {
	embedder := &recordingEmbedder{}
	index := newFakeIndex()
	index.hits = []model.ChunkHit{
		{ID: "v1-chunk-0", Score: 0.7, Meta: model.ChunkMetadata{VideoID: "v1", ChunkIndex: 0, Content: "first"}},
		{ID: "v1-chunk-1", Score: 0.9, Meta: model.ChunkMetadata{VideoID: "v1", ChunkIndex: 1, Content: "second"}},
		{ID: "v2-chunk-0", Score: 0.8, Meta: model.ChunkMetadata{VideoID: "v2", ChunkIndex: 0, Content: "third"}},
	}
	svc := NewEmbeddingService(embedder, index, embedTestConfig())

	matches, err := svc.Query(context.Background(), "some query", 5, "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "v1", matches[0].VideoID)
	require.Equal(t, 1, matches[0].ChunkIndex)
	require.Equal(t, "v2", matches[1].VideoID)
}

func TestQueryScoreFloorAndExclusion(t *testing.T) {
	embedder := &recordingEmbedder{}
	index := newFakeIndex()
	index.hits = []model.ChunkHit{
		{ID: "self-chunk-0", Score: 0.99, Meta: model.ChunkMetadata{VideoID: "self", ChunkIndex: 0}},
		{ID: "weak-chunk-0", Score: 0.5, Meta: model.ChunkMetadata{VideoID: "weak", ChunkIndex: 0}},
		{ID: "ok-chunk-0", Score: 0.6, Meta: model.ChunkMetadata{VideoID: "ok", ChunkIndex: 0}},
	}
	svc := NewEmbeddingService(embedder, index, embedTestConfig())

	matches, err := svc.Query(context.Background(), "some query", 5, "self")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "ok", matches[0].VideoID)
}

func TestQueryTopKCapAndTruncation(t *testing.T) {
	embedder := &recordingEmbedder{}
	index := newFakeIndex()
	svc := NewEmbeddingService(embedder, index, embedTestConfig())

	longQuery := strings.Repeat("q", 5000)
	_, err := svc.Query(context.Background(), longQuery, 50, "")
	require.NoError(t, err)
	require.Equal(t, 20, index.gotTopK)
	require.Len(t, embedder.texts, 1)
	require.Equal(t, 2000, len([]rune(embedder.texts[0])))
}

func TestQueryEmptyText(t *testing.T) {
	embedder := &recordingEmbedder{}
	svc := NewEmbeddingService(embedder, newFakeIndex(), embedTestConfig())

	matches, err := svc.Query(context.Background(), "   ", 5, "")
	require.NoError(t, err)
	require.Empty(t, matches)
	require.Empty(t, embedder.texts)
}

func TestDeleteAll(t *testing.T) {
	embedder := &recordingEmbedder{}
	index := newFakeIndex()
	index.idsByVid["v1"] = []string{"v1-chunk-0", "v1-chunk-1"}
	svc := NewEmbeddingService(embedder, index, embedTestConfig())

	require.NoError(t, svc.DeleteAll(context.Background(), "v1"))
	require.Equal(t, []string{"v1-chunk-0", "v1-chunk-1"}, index.deleted)

	// A video without chunks is a no-op, not an error.
	require.NoError(t, svc.DeleteAll(context.Background(), "v2"))
}
