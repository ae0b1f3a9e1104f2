package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/vidhub/internal/pkg/errors"
)

// DocumentEmbedder is the slice of the embedding pipeline that indexing
// drives.
type DocumentEmbedder interface {
	EmbedAndStore(ctx context.Context, videoID, transcript, title, description string, tags []string) (int, error)
	DeleteAll(ctx context.Context, videoID string) error
}

// FTSIndex writes the inverted lexical index.
type FTSIndex interface {
	Upsert(ctx context.Context, videoID, title, body string) error
	Delete(ctx context.Context, videoID string) error
}

// TagNameLister reads the plain tag names attached to a video.
type TagNameLister interface {
	ListNamesByVideo(ctx context.Context, videoID string) ([]string, error)
}

// CacheInvalidator drops derived per-video caches after a reindex.
type CacheInvalidator interface {
	Invalidate(videoID string)
}

// IndexService rebuilds every derived search artifact for a video: the
// chunk vectors and the lexical index, then any cached neighbor lists.
type IndexService struct {
	videos      VideoReader
	transcripts TranscriptSource
	tags        TagNameLister
	embedder    DocumentEmbedder
	fts         FTSIndex
	invalidator CacheInvalidator
}

func NewIndexService(
	videos VideoReader,
	transcripts TranscriptSource,
	tags TagNameLister,
	embedder DocumentEmbedder,
	fts FTSIndex,
	invalidator CacheInvalidator,
) *IndexService {
	return &IndexService{
		videos:      videos,
		transcripts: transcripts,
		tags:        tags,
		embedder:    embedder,
		fts:         fts,
		invalidator: invalidator,
	}
}

// Reindex recomputes both indexes from the current metadata. A missing
// transcript still refreshes the lexical index; embedding is skipped.
// Returns the number of vector chunks written.
func (s *IndexService) Reindex(ctx context.Context, videoID string) (int, error) {
	if videoID == "" {
		return 0, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("video_id", videoID))
	video, err := s.videos.GetReady(ctx, videoID)
	if err != nil {
		return 0, err
	}
	transcript, err := s.transcripts.GetByVideo(ctx, videoID)
	if err != nil && !appErr.IsNotFound(err) {
		return 0, err
	}
	tags, err := s.tags.ListNamesByVideo(ctx, videoID)
	if err != nil {
		return 0, err
	}

	plainDesc := markdownToText(video.Description)
	body := strings.Join([]string{plainDesc, transcript, strings.Join(tags, " ")}, "\n")
	if err := s.fts.Upsert(ctx, videoID, video.Title, body); err != nil {
		return 0, err
	}

	stored := 0
	if transcript != "" {
		stored, err = s.embedder.EmbedAndStore(ctx, videoID, transcript, video.Title, plainDesc, tags)
		if err != nil {
			return stored, err
		}
	}
	s.invalidator.Invalidate(videoID)
	logger.Info("video reindexed", zap.Int("chunks", stored))
	return stored, nil
}

// DeleteIndex removes every derived artifact for the video. Safe to call
// for videos that were never indexed.
func (s *IndexService) DeleteIndex(ctx context.Context, videoID string) error {
	if videoID == "" {
		return appErr.ErrInvalid
	}
	if err := s.embedder.DeleteAll(ctx, videoID); err != nil {
		return err
	}
	if err := s.fts.Delete(ctx, videoID); err != nil {
		return err
	}
	s.invalidator.Invalidate(videoID)
	logutil.GetLogger(ctx).Info("video index deleted", zap.String("video_id", videoID))
	return nil
}

// markdownToText flattens markdown to the plain text the lexical index
// wants. Formatting characters never make it into the tsvector.
func markdownToText(src string) string {
	if src == "" {
		return ""
	}
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.AutoLink:
			sb.Write(node.URL(source))
		default:
			if n.Type() == ast.TypeBlock && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(strings.Join(strings.Fields(sb.String()), " "))
}
