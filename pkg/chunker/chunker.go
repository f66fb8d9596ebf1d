package chunker

import (
	"errors"
	"strings"
	"unicode"
)

// ErrEmptyDocument is returned when the input text is empty or whitespace-only.
// Callers must treat this as a terminal failure, not something to retry.
var ErrEmptyDocument = errors.New("document is empty or whitespace-only")

// Chunk is a bounded passage of document text used as the unit of retrieval.
type Chunk struct {
	Text  string
	Index int // 0-based position in the original document order
}

const (
	DefaultTargetSize = 1000
	DefaultOverlap    = 200
)

// Split divides text into overlapping chunks of approximately targetSize runes.
// Consecutive chunks share roughly 'overlap' runes so a clause spanning a
// boundary still appears whole in at least one chunk. Cuts prefer natural
// boundaries (paragraph, then sentence, then word) and fall back to a hard
// character cut only when no boundary exists in the window.
// The result is deterministic: same input, same chunks.
func Split(text string, targetSize int, overlap int) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	if overlap < 0 || overlap >= targetSize {
		overlap = DefaultOverlap
		if overlap >= targetSize {
			overlap = targetSize / 5
		}
	}

	runes := []rune(text)
	totalLen := len(runes)

	if totalLen <= targetSize {
		return []Chunk{{Text: text, Index: 0}}, nil
	}

	var chunks []Chunk
	start := 0
	for start < totalLen {
		end := start + targetSize
		if end >= totalLen {
			chunks = append(chunks, Chunk{Text: string(runes[start:totalLen]), Index: len(chunks)})
			break
		}

		cut := findCut(runes, start, end)
		chunks = append(chunks, Chunk{Text: string(runes[start:cut]), Index: len(chunks)})

		next := cut - overlap
		if next <= start {
			// Guarantee forward progress even when overlap swallows the whole step
			next = cut
		}
		start = next
	}

	return chunks, nil
}

// findCut searches backward from end for the best boundary inside the window.
// A boundary found in the lower half of the window is rejected so chunk sizes
// stay close to the target.
func findCut(runes []rune, start, end int) int {
	minCut := start + (end-start)/2

	// Paragraph break
	for i := end; i > minCut; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}

	// Sentence end followed by whitespace
	for i := end; i > minCut; i-- {
		c := runes[i-1]
		if (c == '.' || c == '!' || c == '?' || c == '\n') && i < len(runes) && unicode.IsSpace(runes[i]) {
			return i
		}
	}

	// Word boundary
	for i := end; i > minCut; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}

	// Hard cut
	return end
}
