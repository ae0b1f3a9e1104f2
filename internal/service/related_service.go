package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vidhub/internal/model"
	appErr "github.com/xxxsen/vidhub/internal/pkg/errors"
)

// SimilaritySearcher is what the related-video path needs from the
// embedding layer.
type SimilaritySearcher interface {
	Query(ctx context.Context, text string, limit int, excludeVideoID string) ([]model.SimilarityMatch, error)
}

// TranscriptSource reads transcript content from the metadata store.
type TranscriptSource interface {
	GetByVideo(ctx context.Context, videoID string) (string, error)
}

// RelatedService answers "videos like this one" through a bounded TTL
// cache keyed by (videoID, limit). Entries are never refreshed on write;
// staleness up to the TTL is the accepted trade for skipping ANN round
// trips.
type RelatedService struct {
	similarity  SimilaritySearcher
	transcripts TranscriptSource
	cache       *expirable.LRU[string, []model.SimilarityMatch]
}

func NewRelatedService(similarity SimilaritySearcher, transcripts TranscriptSource, size int, ttl time.Duration) *RelatedService {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RelatedService{
		similarity:  similarity,
		transcripts: transcripts,
		cache:       expirable.NewLRU[string, []model.SimilarityMatch](size, nil, ttl),
	}
}

// GetRelated returns the cached neighbor list when fresh; otherwise it
// embeds the video's transcript and queries the index. A video without a
// transcript has no semantic neighbors. Collaborator failures downgrade to
// an empty list and a log line, never to a caller-visible error.
func (s *RelatedService) GetRelated(ctx context.Context, videoID string, limit int) ([]model.SimilarityMatch, error) {
	if videoID == "" {
		return nil, appErr.ErrInvalid
	}
	if limit <= 0 {
		limit = 5
	}
	key := relatedCacheKey(videoID, limit)
	if cached, ok := s.cache.Get(key); ok {
		return cloneMatches(cached), nil
	}
	logger := logutil.GetLogger(ctx).With(zap.String("video_id", videoID))
	transcript, err := s.transcripts.GetByVideo(ctx, videoID)
	if err != nil {
		if !appErr.IsNotFound(err) {
			logger.Error("failed to load transcript for related lookup", zap.Error(err))
		}
		return []model.SimilarityMatch{}, nil
	}
	matches, err := s.similarity.Query(ctx, transcript, limit, videoID)
	if err != nil {
		logger.Error("related vector query failed", zap.Error(err))
		return []model.SimilarityMatch{}, nil
	}
	s.cache.Add(key, cloneMatches(matches))
	return matches, nil
}

// Invalidate drops every cached entry for the video, across all limits.
// Called when a video is deleted or re-embedded.
func (s *RelatedService) Invalidate(videoID string) {
	prefix := videoID + ":"
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Remove(key)
		}
	}
}

func relatedCacheKey(videoID string, limit int) string {
	return fmt.Sprintf("%s:%d", videoID, limit)
}

func cloneMatches(matches []model.SimilarityMatch) []model.SimilarityMatch {
	if len(matches) == 0 {
		return []model.SimilarityMatch{}
	}
	clone := make([]model.SimilarityMatch, len(matches))
	copy(clone, matches)
	return clone
}
