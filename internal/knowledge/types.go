// Package knowledge holds the in-process knowledge base: chunked profile
// text, its embeddings, and cosine-similarity search over them.
//
// The embedding cache is built exactly once and is read-only afterwards, so
// searches after initialization are lock-free.
package knowledge

import "context"

// Chunk is one bounded unit of source knowledge text.
// Chunks are created once at initialization and never mutated.
type Chunk struct {
	ID   int    // ordinal position in the source
	Text string // chunk content
}

// Result is a single search hit.
type Result struct {
	Chunk      Chunk
	Similarity float64 // cosine similarity in [-1, 1]
}

// Embedder produces fixed-length vector representations of text.
// Implementations must return an error rather than panic; the Store treats
// embedding failures as a degraded (empty) retrieval, never a request
// failure.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
