package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/vidhub/internal/model"
	"github.com/xxxsen/vidhub/internal/pkg/dbutil"
	appErr "github.com/xxxsen/vidhub/internal/pkg/errors"
)

const (
	substringScoreTitle       = 10
	substringScoreDescription = 8
	substringScoreTranscript  = 6
	substringScoreTag         = 5
	substringScoreChapter     = 4
)

type VideoRepo struct {
	db *sql.DB
}

func NewVideoRepo(db *sql.DB) *VideoRepo {
	return &VideoRepo{db: db}
}

// GetReady returns the video only if it is searchable. Stale references
// from old index entries surface as ErrNotFound.
func (r *VideoRepo) GetReady(ctx context.Context, videoID string) (*model.Video, error) {
	where := map[string]interface{}{
		"id":     videoID,
		"status": model.VideoStatusReady,
	}
	sqlStr, args, err := builder.BuildSelect("videos", where, videoColumns())
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var v model.Video
	if err := scanVideo(rows, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VideoRepo) ListReady(ctx context.Context, limit, offset uint) ([]model.Video, error) {
	where := map[string]interface{}{
		"status":   model.VideoStatusReady,
		"_orderby": "mtime desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("videos", where, videoColumns())
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	videos := make([]model.Video, 0)
	for rows.Next() {
		var v model.Video
		if err := scanVideo(rows, &v); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Video, error) {
	if len(ids) == 0 {
		return []model.Video{}, nil
	}
	query := `SELECT id, title, description, status, duration, ctime, mtime FROM videos WHERE id IN (?)`
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	videos := make([]model.Video, 0, len(ids))
	for rows.Next() {
		var v model.Video
		if err := scanVideo(rows, &v); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// SearchSubstring is the cheap containment matcher of last resort. Each
// field containing the query contributes a fixed score tier; tiers sum.
func (r *VideoRepo) SearchSubstring(ctx context.Context, input string, limit int) ([]model.SearchMatch, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(input)) + "%"
	if like == "%%" {
		return []model.SearchMatch{}, nil
	}
	const query = `
		SELECT id, score FROM (
			SELECT v.id,
				(CASE WHEN lower(v.title) LIKE $1 THEN $2::int ELSE 0 END) +
				(CASE WHEN lower(v.description) LIKE $1 THEN $3::int ELSE 0 END) +
				(CASE WHEN EXISTS (SELECT 1 FROM transcripts t WHERE t.video_id = v.id AND lower(t.content) LIKE $1) THEN $4::int ELSE 0 END) +
				(CASE WHEN EXISTS (SELECT 1 FROM video_tags vt JOIN tags g ON g.id = vt.tag_id WHERE vt.video_id = v.id AND lower(g.name) LIKE $1) THEN $5::int ELSE 0 END) +
				(CASE WHEN EXISTS (SELECT 1 FROM chapters c WHERE c.video_id = v.id AND lower(c.title) LIKE $1) THEN $6::int ELSE 0 END)
				AS score
			FROM videos v
			WHERE v.status = $7
		) matched
		WHERE score > 0
		ORDER BY score DESC, id
		LIMIT $8
	`
	rows, err := r.db.QueryContext(ctx, query,
		like,
		substringScoreTitle,
		substringScoreDescription,
		substringScoreTranscript,
		substringScoreTag,
		substringScoreChapter,
		model.VideoStatusReady,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	matches := make([]model.SearchMatch, 0)
	for rows.Next() {
		var m model.SearchMatch
		if err := rows.Scan(&m.VideoID, &m.Score); err != nil {
			return nil, err
		}
		m.Strategy = model.StrategySemantic
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CountTagMatches returns, per ready video, how many of its tags contain
// the query substring. Zero-count videos are not returned.
func (r *VideoRepo) CountTagMatches(ctx context.Context, input string, limit int) (map[string]int, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(input)) + "%"
	if like == "%%" {
		return map[string]int{}, nil
	}
	const query = `
		SELECT vt.video_id, count(*) AS cnt
		FROM video_tags vt
		JOIN tags g ON g.id = vt.tag_id
		JOIN videos v ON v.id = vt.video_id
		WHERE lower(g.name) LIKE $1 AND v.status = $2
		GROUP BY vt.video_id
		ORDER BY cnt DESC, vt.video_id
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, like, model.VideoStatusReady, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var videoID string
		var cnt int
		if err := rows.Scan(&videoID, &cnt); err != nil {
			return nil, err
		}
		counts[videoID] = cnt
	}
	return counts, rows.Err()
}

// ListPendingEmbeddings returns ready videos whose transcript is newer
// than their chunk set, or which have a transcript but no chunks at all.
func (r *VideoRepo) ListPendingEmbeddings(ctx context.Context, limit int) ([]string, error) {
	const query = `
		SELECT v.id
		FROM videos v
		JOIN transcripts t ON t.video_id = v.id
		LEFT JOIN (
			SELECT video_id, max(mtime) AS mtime FROM video_chunks GROUP BY video_id
		) c ON c.video_id = v.id
		WHERE v.status = $1 AND (c.video_id IS NULL OR t.mtime > c.mtime)
		ORDER BY v.id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, model.VideoStatusReady, limit)
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

func videoColumns() []string {
	return []string{"id", "title", "description", "status", "duration", "ctime", "mtime"}
}

func scanVideo(rows *sql.Rows, v *model.Video) error {
	return rows.Scan(&v.ID, &v.Title, &v.Description, &v.Status, &v.Duration, &v.Ctime, &v.Mtime)
}
