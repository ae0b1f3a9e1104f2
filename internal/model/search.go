package model

type SearchStrategy string

const (
	StrategyVector   SearchStrategy = "vector"
	StrategyLexical  SearchStrategy = "lexical"
	StrategyTag      SearchStrategy = "tag"
	StrategySemantic SearchStrategy = "semantic"
	StrategyCombined SearchStrategy = "combined"
)

// SearchMatch is a per-query candidate produced by one strategy. Scores are
// strategy-scaled and only comparable after merging.
type SearchMatch struct {
	VideoID  string
	Score    float64
	Strategy SearchStrategy
	Excerpt  string
}

// SimilarityMatch is the best-scoring chunk of a video for a vector query.
type SimilarityMatch struct {
	VideoID    string  `json:"video_id"`
	Score      float64 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
}

// SearchResult is the hydrated output unit returned to API callers.
type SearchResult struct {
	Video          *Video         `json:"video"`
	Tags           []Tag          `json:"tags"`
	Chapters       []Chapter      `json:"chapters"`
	Transcript     string         `json:"transcript,omitempty"`
	RelevanceScore float64        `json:"relevance_score"`
	SearchType     SearchStrategy `json:"search_type"`
}
