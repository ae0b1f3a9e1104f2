package repo

import (
	"context"
	"database/sql"
	"strings"
	"unicode"

	"github.com/xxxsen/vidhub/internal/model"
)

// FTSRepo fronts the inverted full-text index over title, description,
// transcript and tag names. Only ready videos are returned.
type FTSRepo struct {
	db *sql.DB
}

func NewFTSRepo(db *sql.DB) *FTSRepo {
	return &FTSRepo{db: db}
}

func (r *FTSRepo) Upsert(ctx context.Context, videoID, title, body string) error {
	const query = `
		INSERT INTO video_fts (video_id, title, body, tsv)
		VALUES ($1, $2, $3, setweight(to_tsvector('simple', $2), 'A') || setweight(to_tsvector('simple', $3), 'B'))
		ON CONFLICT (video_id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			tsv = EXCLUDED.tsv
	`
	_, err := r.db.ExecContext(ctx, query, videoID, title, body)
	return err
}

func (r *FTSRepo) Delete(ctx context.Context, videoID string) error {
	const query = `DELETE FROM video_fts WHERE video_id = $1`
	_, err := r.db.ExecContext(ctx, query, videoID)
	return err
}

func (r *FTSRepo) Search(ctx context.Context, input string, limit int) ([]model.SearchMatch, error) {
	tsQuery := BuildFTSQuery(input)
	if tsQuery == "" {
		return []model.SearchMatch{}, nil
	}
	const query = `
		SELECT f.video_id, ts_rank_cd(f.tsv, q.query) AS score
		FROM video_fts f
		JOIN videos v ON v.id = f.video_id,
		to_tsquery('simple', $1) q(query)
		WHERE f.tsv @@ q.query AND v.status = $2
		ORDER BY score DESC, f.video_id
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, tsQuery, model.VideoStatusReady, limit)
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
		m.Strategy = model.StrategyLexical
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

var ftsStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "who": {}, "has": {}, "had": {}, "how": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "with": {},
	"this": {}, "that": {}, "from": {}, "they": {}, "will": {},
	"have": {}, "about": {}, "into": {}, "does": {}, "your": {},
}

// BuildFTSQuery lowercases the input, strips punctuation, drops stop-words
// and tokens of length <= 2, and ORs the survivors as prefix terms. Recall
// over precision: downstream merging re-weights whatever comes back.
func BuildFTSQuery(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	var sb strings.Builder
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	tokens := strings.Fields(sb.String())
	terms := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if len([]rune(tok)) <= 2 {
			continue
		}
		if _, ok := ftsStopWords[tok]; ok {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok+":*")
	}
	return strings.Join(terms, " | ")
}
