// Package testutil provides deterministic doubles shared by tests across
// the repository.
package testutil

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
)

// Logger returns a logger that forwards records to the test log, so output
// only surfaces for failing or verbose runs.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// Embedder is a deterministic in-process embedder. It hashes tokens into a
// fixed-size bag-of-words vector, so the cosine similarity of two texts
// grows with their term overlap and ranking assertions stay stable.
type Embedder struct {
	// Dim is the vector dimensionality; 64 when zero.
	Dim int
	// FailEmbed and FailBatch force the corresponding call to error.
	FailEmbed bool
	FailBatch bool

	EmbedCalls atomic.Int64
	BatchCalls atomic.Int64
}

func (e *Embedder) dim() int {
	if e.Dim > 0 {
		return e.Dim
	}
	return 64
}

// Vector returns the embedding Embed would produce for text.
func (e *Embedder) Vector(text string) []float32 {
	vec := make([]float32, e.dim())
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(e.dim())]++
	}
	return vec
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.EmbedCalls.Add(1)
	if e.FailEmbed {
		return nil, errors.New("embed failed")
	}
	return e.Vector(text), nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.BatchCalls.Add(1)
	if e.FailBatch {
		return nil, errors.New("batch embed failed")
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = e.Vector(t)
	}
	return vectors, nil
}
