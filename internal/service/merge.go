package service

import (
	"sort"

	"github.com/xxxsen/vidhub/internal/model"
)

// MergeWeights holds the cross-strategy boost multipliers. The ordering
// lexical > vector > semantic > tag is a behavioral contract; the exact
// values are tuning knobs loaded from config.
type MergeWeights struct {
	LexicalBoost float64
	SemanticFold float64
	TagFold      float64
	VectorFold   float64
}

// mergeMatches blends per-strategy candidate lists into one ranked,
// deduplicated list. Lexical results seed the map with their score
// boosted; each later strategy either inserts a new video as-is or adds a
// weighted share of its score to the existing entry and relabels it as
// combined. Cross-strategy agreement therefore always outranks any single
// signal of the same strength.
func mergeMatches(lexical, semantic, tag, vector []model.SearchMatch, w MergeWeights, limit int) []model.SearchMatch {
	merged := make(map[string]*model.SearchMatch)
	for _, m := range lexical {
		entry := m
		entry.Score *= w.LexicalBoost
		entry.Strategy = model.StrategyLexical
		merged[m.VideoID] = &entry
	}
	fold := func(items []model.SearchMatch, weight float64) {
		for _, m := range items {
			if exist, ok := merged[m.VideoID]; ok {
				exist.Score += weight * m.Score
				exist.Strategy = model.StrategyCombined
				if exist.Excerpt == "" {
					exist.Excerpt = m.Excerpt
				}
				continue
			}
			entry := m
			merged[m.VideoID] = &entry
		}
	}
	fold(semantic, w.SemanticFold)
	fold(tag, w.TagFold)
	fold(vector, w.VectorFold)

	out := make([]model.SearchMatch, 0, len(merged))
	for _, m := range merged {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].VideoID < out[j].VideoID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
