package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vidhub/internal/service"
)

// PendingLister finds videos whose transcript changed since their chunks
// were last written.
type PendingLister interface {
	ListPendingEmbeddings(ctx context.Context, limit int) ([]string, error)
}

// EmbeddingResyncJob re-embeds videos whose derived vectors have fallen
// behind their transcript. One video failing does not stop the batch.
type EmbeddingResyncJob struct {
	pending PendingLister
	indexer *service.IndexService
	batch   int
}

func NewEmbeddingResyncJob(pending PendingLister, indexer *service.IndexService, batch int) *EmbeddingResyncJob {
	if batch <= 0 {
		batch = 10
	}
	return &EmbeddingResyncJob{pending: pending, indexer: indexer, batch: batch}
}

func (j *EmbeddingResyncJob) Name() string {
	return "embedding_resync"
}

func (j *EmbeddingResyncJob) Run(ctx context.Context) error {
	ids, err := j.pending.ListPendingEmbeddings(ctx, j.batch)
	if err != nil {
		return err
	}
	for _, videoID := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := j.indexer.Reindex(ctx, videoID); err != nil {
			logutil.GetLogger(ctx).Error("resync failed for video",
				zap.String("video_id", videoID), zap.Error(err))
		}
	}
	return nil
}
