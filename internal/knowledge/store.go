package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultEmbedTimeout bounds a single embedding call against the provider.
const DefaultEmbedTimeout = 30 * time.Second

// Store is an in-memory embedding cache over a fixed chunk set.
//
// Initialize embeds every chunk in one batch, exactly once; concurrent
// callers block until the first attempt completes. If that attempt fails the
// Store stays empty and Search degrades to no results rather than erroring.
type Store struct {
	embedder Embedder
	chunks   []Chunk
	logger   *slog.Logger

	embedTimeout time.Duration

	initOnce sync.Once
	initErr  error
	vectors  [][]float32
	ready    atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithEmbedTimeout overrides the per-call embedding timeout.
func WithEmbedTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.embedTimeout = d
		}
	}
}

// NewStore builds a Store over the given chunks. Nothing is embedded until
// Initialize (or the first Search) runs.
func NewStore(embedder Embedder, chunks []Chunk, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		embedder:     embedder,
		chunks:       chunks,
		logger:       logger,
		embedTimeout: DefaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len reports how many chunks the store holds.
func (s *Store) Len() int { return len(s.chunks) }

// Ready reports whether the embedding cache was built successfully.
func (s *Store) Ready() bool { return s.ready.Load() }

// Initialize builds the embedding cache. It runs the batch embedding at most
// once per Store; later calls return the outcome of the first attempt
// without re-embedding. A failed attempt leaves the store empty for its
// lifetime, which Search tolerates.
func (s *Store) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		if len(s.chunks) == 0 {
			s.ready.Store(true)
			return
		}
		texts := make([]string, len(s.chunks))
		for i, c := range s.chunks {
			texts[i] = c.Text
		}

		start := time.Now()
		embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
		defer cancel()

		vectors, err := s.embedder.EmbedBatch(embedCtx, texts)
		if err != nil {
			s.logger.Error("knowledge cache build failed",
				"chunks", len(texts),
				"error", err)
			s.initErr = err
			return
		}
		if len(vectors) != len(texts) {
			s.logger.Error("knowledge cache build returned wrong vector count",
				"want", len(texts),
				"got", len(vectors))
			s.initErr = fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
			return
		}

		s.vectors = vectors
		s.ready.Store(true)
		s.logger.Info("knowledge cache built",
			"chunks", len(texts),
			"duration", time.Since(start))
	})
	return s.initErr
}

// Search returns up to topK chunks ranked by cosine similarity to query,
// highest first, ties broken by lower chunk ID. It never fails: an unbuilt
// cache, a failed query embedding, or an empty store all yield no results.
func (s *Store) Search(ctx context.Context, query string, topK int) []Result {
	if err := s.Initialize(ctx); err != nil || !s.ready.Load() || len(s.vectors) == 0 {
		return nil
	}
	if topK <= 0 {
		return nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	queryVec, err := s.embedder.Embed(embedCtx, query)
	if err != nil {
		s.logger.Warn("query embedding failed, returning no results", "error", err)
		return nil
	}

	results := make([]Result, 0, len(s.chunks))
	for i, c := range s.chunks {
		results = append(results, Result{
			Chunk:      c,
			Similarity: cosineSimilarity(queryVec, s.vectors[i]),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0
// when either vector is zero-length or degenerate.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
