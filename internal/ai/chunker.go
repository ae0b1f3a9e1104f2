package ai

import (
	"strings"
	"unicode"

	"github.com/xxxsen/vidhub/internal/model"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ChunkTranscript splits a transcript into overlapping windows sized for
// embedding. Offsets are rune positions in the source text. Consecutive
// windows retreat by overlap runes; a boundary that would split a word is
// backed off to the nearest preceding space unless that shrinks the window
// below 80% of size. Identical input always yields identical spans.
func ChunkTranscript(text string, size, overlap int) []model.TranscriptChunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if n <= size {
		content := strings.TrimSpace(text)
		if content == "" {
			return nil
		}
		return []model.TranscriptChunk{{Content: content, Start: 0, End: n}}
	}

	minLen := size * 4 / 5
	var chunks []model.TranscriptChunk
	start := 0
	for start < n {
		end := start + size
		// stepEnd drives the next window start and ignores clamping at the
		// end of text, so start offsets stay on the fixed stride there.
		stepEnd := end
		if end >= n {
			end = n
		} else if !unicode.IsSpace(runes[end]) && !unicode.IsSpace(runes[end-1]) {
			for cut := end - 1; cut >= start+minLen; cut-- {
				if unicode.IsSpace(runes[cut]) {
					end = cut
					stepEnd = cut
					break
				}
			}
		}
		content := strings.TrimSpace(string(runes[start:end]))
		if content != "" {
			chunks = append(chunks, model.TranscriptChunk{Content: content, Start: start, End: end})
		}
		next := stepEnd - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}
