package knowledge

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// wordEmbedder produces bag-of-words vectors via the hashing trick, so the
// cosine similarity of two texts grows with their term overlap. That makes
// ranking assertions deterministic without a live embedding model.
type wordEmbedder struct {
	dim        int
	failEmbed  bool
	failBatch  bool
	embedCalls atomic.Int64
	batchCalls atomic.Int64
}

func (e *wordEmbedder) vector(text string) []float32 {
	dim := e.dim
	if dim == 0 {
		dim = 64
	}
	vec := make([]float32, dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(dim)]++
	}
	return vec
}

func (e *wordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.embedCalls.Add(1)
	if e.failEmbed {
		return nil, errors.New("embed failed")
	}
	return e.vector(text), nil
}

func (e *wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batchCalls.Add(1)
	if e.failBatch {
		return nil, errors.New("batch embed failed")
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = e.vector(t)
	}
	return vectors, nil
}

func nopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testChunks() []Chunk {
	return []Chunk{
		{ID: 0, Text: "backend engineer with golang and postgres experience"},
		{ID: 1, Text: "studied computer science at university of madrid"},
		{ID: 2, Text: "golang microservices and distributed systems at scale"},
		{ID: 3, Text: "hobbies include hiking photography and cooking"},
	}
}

func TestStoreInitialize(t *testing.T) {
	emb := &wordEmbedder{}
	store := NewStore(emb, testChunks(), nopLogger())

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if !store.Ready() {
		t.Error("Ready() = false after successful Initialize")
	}
	if got := emb.batchCalls.Load(); got != 1 {
		t.Errorf("EmbedBatch calls = %d, want 1", got)
	}
}

func TestStoreInitialize_RunsOnce(t *testing.T) {
	emb := &wordEmbedder{}
	store := NewStore(emb, testChunks(), nopLogger())
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Initialize(ctx); err != nil {
				t.Errorf("Initialize() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := emb.batchCalls.Load(); got != 1 {
		t.Errorf("EmbedBatch calls = %d, want exactly 1 for %d concurrent callers", got, callers)
	}
}

func TestStoreInitialize_FailureIsSticky(t *testing.T) {
	emb := &wordEmbedder{failBatch: true}
	store := NewStore(emb, testChunks(), nopLogger())
	ctx := context.Background()

	if err := store.Initialize(ctx); err == nil {
		t.Fatal("Initialize() error = nil, want failure")
	}
	if store.Ready() {
		t.Error("Ready() = true after failed Initialize")
	}

	// Later attempts must not re-run the batch and must report the
	// original outcome.
	emb.failBatch = false
	if err := store.Initialize(ctx); err == nil {
		t.Error("second Initialize() error = nil, want first attempt's failure")
	}
	if got := emb.batchCalls.Load(); got != 1 {
		t.Errorf("EmbedBatch calls = %d, want 1 (no retry after failure)", got)
	}
	if results := store.Search(ctx, "golang", 3); len(results) != 0 {
		t.Errorf("Search on failed store returned %d results, want 0", len(results))
	}
}

func TestStoreReady_ConcurrentWithInitialize(t *testing.T) {
	emb := &wordEmbedder{}
	store := NewStore(emb, testChunks(), nopLogger())

	// Ready is polled by health checks while the warm-up goroutine runs;
	// the race detector must stay quiet here.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Initialize(context.Background())
	}()
	for range 100 {
		_ = store.Ready()
	}
	<-done

	if !store.Ready() {
		t.Error("Ready() = false after Initialize completed")
	}
}

func TestStoreInitialize_EmptyChunks(t *testing.T) {
	emb := &wordEmbedder{}
	store := NewStore(emb, nil, nopLogger())

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := emb.batchCalls.Load(); got != 0 {
		t.Errorf("EmbedBatch calls = %d, want 0 for empty store", got)
	}
	if results := store.Search(context.Background(), "anything", 3); len(results) != 0 {
		t.Errorf("Search on empty store returned %d results, want 0", len(results))
	}
}

func TestStoreSearch_RanksByRelevance(t *testing.T) {
	store := NewStore(&wordEmbedder{}, testChunks(), nopLogger())
	ctx := context.Background()
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	results := store.Search(ctx, "golang distributed systems experience", 2)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Chunk.ID != 2 {
		t.Errorf("top result = chunk %d, want 2 (most term overlap)", results[0].Chunk.ID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Errorf("results not sorted: %.3f before %.3f",
			results[0].Similarity, results[1].Similarity)
	}
}

func TestStoreSearch_LazyInitialize(t *testing.T) {
	emb := &wordEmbedder{}
	store := NewStore(emb, testChunks(), nopLogger())

	results := store.Search(context.Background(), "golang", 3)
	if len(results) == 0 {
		t.Fatal("Search returned no results, want lazy initialization to build the cache")
	}
	if got := emb.batchCalls.Load(); got != 1 {
		t.Errorf("EmbedBatch calls = %d, want 1", got)
	}
}

func TestStoreSearch_TopKBounds(t *testing.T) {
	store := NewStore(&wordEmbedder{}, testChunks(), nopLogger())
	ctx := context.Background()

	if got := store.Search(ctx, "golang", 100); len(got) != len(testChunks()) {
		t.Errorf("topK > len: got %d results, want %d", len(got), len(testChunks()))
	}
	if got := store.Search(ctx, "golang", 0); got != nil {
		t.Errorf("topK = 0: got %d results, want none", len(got))
	}
	if got := store.Search(ctx, "golang", -1); got != nil {
		t.Errorf("topK < 0: got %d results, want none", len(got))
	}
}

func TestStoreSearch_QueryEmbedFailureDegrades(t *testing.T) {
	emb := &wordEmbedder{}
	store := NewStore(emb, testChunks(), nopLogger())
	ctx := context.Background()
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	emb.failEmbed = true
	if results := store.Search(ctx, "golang", 3); results != nil {
		t.Errorf("Search with failing query embed returned %d results, want none", len(results))
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
