package repo

import (
	"context"
	"database/sql"

	"github.com/xxxsen/vidhub/internal/model"
)

type TagRepo struct {
	db *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{db: db}
}

func (r *TagRepo) ListByVideo(ctx context.Context, videoID string) ([]model.Tag, error) {
	const query = `
		SELECT g.id, g.name, g.ctime
		FROM tags g
		JOIN video_tags vt ON vt.tag_id = g.id
		WHERE vt.video_id = $1
		ORDER BY g.name
	`
	rows, err := r.db.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tags := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Ctime); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *TagRepo) ListNamesByVideo(ctx context.Context, videoID string) ([]string, error) {
	tags, err := r.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names, nil
}
