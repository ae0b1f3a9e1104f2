package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/vidhub/internal/config"
	"github.com/xxxsen/vidhub/internal/model"
	appErr "github.com/xxxsen/vidhub/internal/pkg/errors"
)

const (
	tagOverlapMultiplier = 3

	lowConfidenceMaxLimit  = 10
	hydrateParallelism     = 4
	transcriptExcerptRunes = 500
)

type LexicalSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchMatch, error)
}

type SubstringMatcher interface {
	SearchSubstring(ctx context.Context, query string, limit int) ([]model.SearchMatch, error)
	CountTagMatches(ctx context.Context, query string, limit int) (map[string]int, error)
}

type VideoReader interface {
	GetReady(ctx context.Context, videoID string) (*model.Video, error)
}

type TagReader interface {
	ListByVideo(ctx context.Context, videoID string) ([]model.Tag, error)
}

type ChapterReader interface {
	ListByVideo(ctx context.Context, videoID string) ([]model.Chapter, error)
}

// searchState drives the facade's fallback chain. Stages only advance when
// the previous one produced nothing (zero rows or a swallowed failure).
type searchState int

const (
	stateHighConfidence searchState = iota
	stateLowConfidence
	stateSubstringFallback
	stateDone
)

func (s searchState) next() searchState {
	switch s {
	case stateHighConfidence:
		return stateLowConfidence
	case stateLowConfidence:
		return stateSubstringFallback
	default:
		return stateDone
	}
}

// SearchService is the public search entry point. Strategies fan out
// concurrently, results are merged and deduplicated, and every
// collaborator failure is downgraded to an empty strategy result: the only
// error a caller can see is an empty query.
type SearchService struct {
	lexical     LexicalSearcher
	matcher     SubstringMatcher
	similarity  SimilaritySearcher
	videos      VideoReader
	tags        TagReader
	chapters    ChapterReader
	transcripts TranscriptSource
	weights     MergeWeights
	cfg         config.SearchConfig
}

func NewSearchService(
	lexical LexicalSearcher,
	matcher SubstringMatcher,
	similarity SimilaritySearcher,
	videos VideoReader,
	tags TagReader,
	chapters ChapterReader,
	transcripts TranscriptSource,
	cfg config.SearchConfig,
) *SearchService {
	return &SearchService{
		lexical:     lexical,
		matcher:     matcher,
		similarity:  similarity,
		videos:      videos,
		tags:        tags,
		chapters:    chapters,
		transcripts: transcripts,
		weights: MergeWeights{
			LexicalBoost: cfg.LexicalBoost,
			SemanticFold: cfg.SemanticFoldWeight,
			TagFold:      cfg.TagFoldWeight,
			VectorFold:   cfg.VectorFoldWeight,
		},
		cfg: cfg,
	}
}

func (s *SearchService) Search(ctx context.Context, query string, limit int, minScore float64) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErr.ErrInvalid
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if minScore <= 0 {
		minScore = s.cfg.HighConfidenceMinScore
	}

	for state := stateHighConfidence; state != stateDone; state = state.next() {
		matches := s.runStage(ctx, state, query, limit, minScore)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if len(matches) == 0 {
			continue
		}
		return s.hydrate(ctx, matches), nil
	}
	return []model.SearchResult{}, nil
}

func (s *SearchService) runStage(ctx context.Context, state searchState, query string, limit int, minScore float64) []model.SearchMatch {
	switch state {
	case stateHighConfidence:
		return s.runHybrid(ctx, query, limit, minScore)
	case stateLowConfidence:
		reduced := limit
		if reduced > lowConfidenceMaxLimit {
			reduced = lowConfidenceMaxLimit
		}
		return s.tryVector(ctx, query, reduced, s.cfg.LowConfidenceMinScore)
	case stateSubstringFallback:
		return s.trySubstring(ctx, query, limit)
	default:
		return nil
	}
}

func (s *SearchService) runHybrid(ctx context.Context, query string, limit int, minScore float64) []model.SearchMatch {
	var lexical, semantic, tag, vector []model.SearchMatch
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexical = s.tryLexical(gctx, query, limit)
		return nil
	})
	g.Go(func() error {
		semantic = s.trySubstring(gctx, query, limit)
		return nil
	})
	g.Go(func() error {
		tag = s.tryTagOverlap(gctx, query, limit)
		return nil
	})
	g.Go(func() error {
		vector = s.tryVector(gctx, query, limit, minScore)
		return nil
	})
	_ = g.Wait()
	return mergeMatches(lexical, semantic, tag, vector, s.weights, limit)
}

func (s *SearchService) tryLexical(ctx context.Context, query string, limit int) []model.SearchMatch {
	matches, err := s.lexical.Search(ctx, query, limit)
	if err != nil {
		logutil.GetLogger(ctx).Error("lexical search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	return matches
}

func (s *SearchService) trySubstring(ctx context.Context, query string, limit int) []model.SearchMatch {
	matches, err := s.matcher.SearchSubstring(ctx, query, limit)
	if err != nil {
		logutil.GetLogger(ctx).Error("substring search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	return matches
}

func (s *SearchService) tryTagOverlap(ctx context.Context, query string, limit int) []model.SearchMatch {
	counts, err := s.matcher.CountTagMatches(ctx, query, limit)
	if err != nil {
		logutil.GetLogger(ctx).Error("tag overlap search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	matches := make([]model.SearchMatch, 0, len(counts))
	for videoID, cnt := range counts {
		if cnt <= 0 {
			continue
		}
		matches = append(matches, model.SearchMatch{
			VideoID:  videoID,
			Score:    float64(cnt * tagOverlapMultiplier),
			Strategy: model.StrategyTag,
		})
	}
	return matches
}

func (s *SearchService) tryVector(ctx context.Context, query string, limit int, minScore float64) []model.SearchMatch {
	similar, err := s.similarity.Query(ctx, query, limit, "")
	if err != nil {
		logutil.GetLogger(ctx).Error("vector search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	matches := make([]model.SearchMatch, 0, len(similar))
	for _, m := range similar {
		if m.Score < minScore {
			continue
		}
		matches = append(matches, model.SearchMatch{
			VideoID:  m.VideoID,
			Score:    m.Score,
			Strategy: model.StrategyVector,
			Excerpt:  m.Content,
		})
	}
	return matches
}

// hydrate loads the full video record for each match, in parallel. A match
// whose video vanished, is no longer ready, or fails to load is dropped
// from the batch; the rest survive.
func (s *SearchService) hydrate(ctx context.Context, matches []model.SearchMatch) []model.SearchResult {
	hydrated := make([]*model.SearchResult, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateParallelism)
	for i, m := range matches {
		g.Go(func() error {
			result := s.hydrateOne(gctx, m)
			hydrated[i] = result
			return nil
		})
	}
	_ = g.Wait()
	results := make([]model.SearchResult, 0, len(matches))
	for _, r := range hydrated {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

func (s *SearchService) hydrateOne(ctx context.Context, m model.SearchMatch) *model.SearchResult {
	logger := logutil.GetLogger(ctx).With(zap.String("video_id", m.VideoID))
	video, err := s.videos.GetReady(ctx, m.VideoID)
	if err != nil {
		if appErr.IsNotFound(err) {
			logger.Debug("dropping match for missing or unready video")
		} else {
			logger.Warn("hydration failed to load video", zap.Error(err))
		}
		return nil
	}
	tags, err := s.tags.ListByVideo(ctx, m.VideoID)
	if err != nil {
		logger.Warn("hydration failed to load tags", zap.Error(err))
		return nil
	}
	chapters, err := s.chapters.ListByVideo(ctx, m.VideoID)
	if err != nil {
		logger.Warn("hydration failed to load chapters", zap.Error(err))
		return nil
	}
	excerpt := m.Excerpt
	if excerpt == "" {
		transcript, err := s.transcripts.GetByVideo(ctx, m.VideoID)
		if err != nil && !appErr.IsNotFound(err) {
			logger.Warn("hydration failed to load transcript", zap.Error(err))
			return nil
		}
		excerpt = transcript
	}
	return &model.SearchResult{
		Video:          video,
		Tags:           tags,
		Chapters:       chapters,
		Transcript:     truncateRunes(excerpt, transcriptExcerptRunes),
		RelevanceScore: m.Score,
		SearchType:     m.Strategy,
	}
}
