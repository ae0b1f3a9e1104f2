package model

import "fmt"

// TranscriptChunk is one window over the source transcript. Start and End
// are rune offsets of the raw window; Content is the trimmed window text.
type TranscriptChunk struct {
	Content string `json:"content"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// ChunkMetadata is stored alongside each vector in the chunk index. The
// index itself is schemaless about payloads, so everything crossing that
// boundary goes through Validate first.
type ChunkMetadata struct {
	VideoID          string `json:"video_id"`
	ChunkIndex       int    `json:"chunk_index"`
	Content          string `json:"content"`
	VideoTitle       string `json:"video_title"`
	VideoDescription string `json:"video_description,omitempty"`
	ChunkStart       int    `json:"chunk_start"`
	ChunkEnd         int    `json:"chunk_end"`
	Tags             string `json:"tags,omitempty"`
}

func (m *ChunkMetadata) Validate() error {
	if m.VideoID == "" {
		return fmt.Errorf("chunk metadata: video_id is empty")
	}
	if m.ChunkIndex < 0 {
		return fmt.Errorf("chunk metadata: negative chunk_index %d", m.ChunkIndex)
	}
	if m.Content == "" {
		return fmt.Errorf("chunk metadata: content is empty")
	}
	if m.ChunkEnd < m.ChunkStart {
		return fmt.Errorf("chunk metadata: span [%d,%d) is inverted", m.ChunkStart, m.ChunkEnd)
	}
	return nil
}

// ChunkID is the deterministic index id for a chunk, which makes upserts
// idempotent and re-embedding safe to retry.
func ChunkID(videoID string, index int) string {
	return fmt.Sprintf("%s-chunk-%d", videoID, index)
}

// ChunkHit is one raw nearest-neighbor row returned by the chunk index.
type ChunkHit struct {
	ID    string
	Score float64
	Meta  ChunkMetadata
}
