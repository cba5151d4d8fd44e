package knowledge

import "strings"

// Default chunking parameters, tuned for embedding models with short
// context windows.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 150
)

// SplitText cuts content into rune-windowed chunks of at most size runes,
// with overlap runes shared between consecutive chunks so that statements
// near a boundary stay retrievable. Whitespace-only chunks are dropped.
//
// overlap is clamped into [0, size-1] so the window always advances.
func SplitText(content string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// ChunksFromSections turns pre-split sections into Chunks, windowing any
// section that exceeds size on its own. IDs are assigned in source order.
func ChunksFromSections(sections []string, size, overlap int) []Chunk {
	var chunks []Chunk
	id := 0
	for _, sec := range sections {
		for _, text := range SplitText(sec, size, overlap) {
			chunks = append(chunks, Chunk{ID: id, Text: text})
			id++
		}
	}
	return chunks
}
