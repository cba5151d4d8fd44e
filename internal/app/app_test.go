package app

import (
	"context"
	"testing"

	"github.com/fprada/ferbot/internal/knowledge"
	"github.com/fprada/ferbot/internal/testutil"
)

func TestAppClose_Idempotent(t *testing.T) {
	store := knowledge.NewStore(&testutil.Embedder{}, []knowledge.Chunk{
		{ID: 0, Text: "backend engineer"},
	}, testutil.Logger(t))

	a := &App{Store: store, logger: testutil.Logger(t)}
	a.warmup.Add(1)
	go func() {
		defer a.warmup.Done()
		_ = store.Initialize(context.Background())
	}()

	a.Close()
	a.Close()

	if !store.Ready() {
		t.Error("Ready() = false after warm-up completed")
	}
}
