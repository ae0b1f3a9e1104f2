package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vidhub/internal/model"
)

// ChunkRepo is the adapter in front of the vector index. Rows are keyed by
// the deterministic chunk id, so upserts are idempotent and concurrent
// re-embedding of the same video needs no locking.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) Upsert(ctx context.Context, id string, vector []float32, meta model.ChunkMetadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	const query = `
		INSERT INTO video_chunks
			(id, video_id, chunk_index, content, embedding, video_title, video_description, chunk_start, chunk_end, tags, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			video_id = EXCLUDED.video_id,
			chunk_index = EXCLUDED.chunk_index,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			video_title = EXCLUDED.video_title,
			video_description = EXCLUDED.video_description,
			chunk_start = EXCLUDED.chunk_start,
			chunk_end = EXCLUDED.chunk_end,
			tags = EXCLUDED.tags,
			mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, query,
		id,
		meta.VideoID,
		meta.ChunkIndex,
		meta.Content,
		pgvector.NewVector(vector),
		meta.VideoTitle,
		meta.VideoDescription,
		meta.ChunkStart,
		meta.ChunkEnd,
		meta.Tags,
		time.Now().Unix(),
	)
	return err
}

// Query returns the topK nearest chunks by cosine similarity. Rows whose
// metadata fails validation are logged and skipped instead of being
// propagated as untyped payloads.
func (r *ChunkRepo) Query(ctx context.Context, vector []float32, topK int) ([]model.ChunkHit, error) {
	const query = `
		SELECT id, video_id, chunk_index, content, video_title, video_description, chunk_start, chunk_end, tags,
			1 - (embedding <=> $1) AS score
		FROM video_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	hits := make([]model.ChunkHit, 0, topK)
	for rows.Next() {
		var hit model.ChunkHit
		if err := rows.Scan(
			&hit.ID,
			&hit.Meta.VideoID,
			&hit.Meta.ChunkIndex,
			&hit.Meta.Content,
			&hit.Meta.VideoTitle,
			&hit.Meta.VideoDescription,
			&hit.Meta.ChunkStart,
			&hit.Meta.ChunkEnd,
			&hit.Meta.Tags,
			&hit.Score,
		); err != nil {
			return nil, err
		}
		if err := hit.Meta.Validate(); err != nil {
			logutil.GetLogger(ctx).Warn("dropping malformed chunk row", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (r *ChunkRepo) ListIDsByVideo(ctx context.Context, videoID string) ([]string, error) {
	const query = `SELECT id FROM video_chunks WHERE video_id = $1 ORDER BY chunk_index`
	rows, err := r.db.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ChunkRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM video_chunks WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
