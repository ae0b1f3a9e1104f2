package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/vidhub/internal/model"
	"github.com/xxxsen/vidhub/internal/pkg/dbutil"
)

type ChapterRepo struct {
	db *sql.DB
}

func NewChapterRepo(db *sql.DB) *ChapterRepo {
	return &ChapterRepo{db: db}
}

func (r *ChapterRepo) ListByVideo(ctx context.Context, videoID string) ([]model.Chapter, error) {
	where := map[string]interface{}{
		"video_id": videoID,
		"_orderby": "start_sec asc",
	}
	sqlStr, args, err := builder.BuildSelect("chapters", where, []string{"id", "video_id", "title", "start_sec", "end_sec"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	chapters := make([]model.Chapter, 0)
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.VideoID, &c.Title, &c.StartSec, &c.EndSec); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}
