package repo

import (
	"context"
	"database/sql"

	appErr "github.com/xxxsen/vidhub/internal/pkg/errors"
)

type TranscriptRepo struct {
	db *sql.DB
}

func NewTranscriptRepo(db *sql.DB) *TranscriptRepo {
	return &TranscriptRepo{db: db}
}

func (r *TranscriptRepo) GetByVideo(ctx context.Context, videoID string) (string, error) {
	const query = `SELECT content FROM transcripts WHERE video_id = $1`
	row := r.db.QueryRowContext(ctx, query, videoID)
	var content string
	if err := row.Scan(&content); err != nil {
		if err == sql.ErrNoRows {
			return "", appErr.ErrNotFound
		}
		return "", err
	}
	return content, nil
}
