package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vidhub/internal/ai"
	"github.com/xxxsen/vidhub/internal/config"
	"github.com/xxxsen/vidhub/internal/model"
)

const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"

	// Hard cap on nearest-neighbor fan-out per query. Bounds ANN tail
	// latency no matter how large the requested page is.
	maxVectorTopK = 20
)

// VectorIndex is the boundary to the chunk vector store.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32, meta model.ChunkMetadata) error
	Query(ctx context.Context, vector []float32, topK int) ([]model.ChunkHit, error)
	ListIDsByVideo(ctx context.Context, videoID string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// EmbeddingService chunks transcripts, embeds them and talks to the vector
// index. Chunk ids are deterministic, so the whole pipeline is at-least-once:
// a partial failure is safe to retry from scratch.
type EmbeddingService struct {
	embedder ai.IEmbedder
	index    VectorIndex
	cfg      config.SearchConfig
}

func NewEmbeddingService(embedder ai.IEmbedder, index VectorIndex, cfg config.SearchConfig) *EmbeddingService {
	return &EmbeddingService{embedder: embedder, index: index, cfg: cfg}
}

// EmbedAndStore chunks the transcript and upserts one vector per chunk.
// It returns the number of chunks stored; on mid-loop failure the count
// covers what made it in, and nothing is rolled back.
func (s *EmbeddingService) EmbedAndStore(ctx context.Context, videoID, transcript, title, description string, tags []string) (int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("video_id", videoID))
	chunks := ai.ChunkTranscript(transcript, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	flatTags := strings.Join(tags, ",")
	stored := 0
	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk.Content, taskTypeDocument)
		if err != nil {
			return stored, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		meta := model.ChunkMetadata{
			VideoID:          videoID,
			ChunkIndex:       i,
			Content:          chunk.Content,
			VideoTitle:       title,
			VideoDescription: description,
			ChunkStart:       chunk.Start,
			ChunkEnd:         chunk.End,
			Tags:             flatTags,
		}
		if err := s.index.Upsert(ctx, model.ChunkID(videoID, i), vec, meta); err != nil {
			return stored, fmt.Errorf("upsert chunk %d: %w", i, err)
		}
		stored++
	}
	logger.Info("transcript embedded", zap.Int("chunks", stored))
	return stored, nil
}

// Query embeds the text and returns per-video similarity matches: the
// best-scoring chunk per video, excluding excludeVideoID, with everything
// at or below the score floor dropped.
func (s *EmbeddingService) Query(ctx context.Context, text string, limit int, excludeVideoID string) ([]model.SimilarityMatch, error) {
	text = truncateRunes(strings.TrimSpace(text), s.cfg.MaxQueryEmbedChars)
	if text == "" || limit <= 0 {
		return []model.SimilarityMatch{}, nil
	}
	vec, err := s.embedder.Embed(ctx, text, taskTypeQuery)
	if err != nil {
		return nil, err
	}
	topK := limit * 2
	if topK > maxVectorTopK {
		topK = maxVectorTopK
	}
	hits, err := s.index.Query(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	best := make(map[string]model.SimilarityMatch)
	for _, hit := range hits {
		if hit.Meta.VideoID == excludeVideoID {
			continue
		}
		if hit.Score <= s.cfg.VectorScoreFloor {
			continue
		}
		if cur, ok := best[hit.Meta.VideoID]; ok && cur.Score >= hit.Score {
			continue
		}
		best[hit.Meta.VideoID] = model.SimilarityMatch{
			VideoID:    hit.Meta.VideoID,
			Score:      hit.Score,
			ChunkIndex: hit.Meta.ChunkIndex,
			Content:    hit.Meta.Content,
		}
	}
	matches := make([]model.SimilarityMatch, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].VideoID < matches[j].VideoID
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// DeleteAll sweeps every chunk belonging to a video: list ids, then delete
// by id. A video with no chunks is not an error.
func (s *EmbeddingService) DeleteAll(ctx context.Context, videoID string) error {
	ids, err := s.index.ListIDsByVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.index.DeleteByIDs(ctx, ids); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("chunks deleted", zap.String("video_id", videoID), zap.Int("count", len(ids)))
	return nil
}

func truncateRunes(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
