// Package app assembles the service from its parts: model provider,
// knowledge base, safety layers, and the chat pipeline.
package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"golang.org/x/time/rate"

	"github.com/fprada/ferbot/internal/chat"
	"github.com/fprada/ferbot/internal/config"
	"github.com/fprada/ferbot/internal/ingest"
	"github.com/fprada/ferbot/internal/knowledge"
	"github.com/fprada/ferbot/internal/moderation"
	"github.com/fprada/ferbot/internal/ratelimit"
	"github.com/fprada/ferbot/internal/security"
)

// providerRPS caps outbound model calls across all requests, keeping the
// service inside the provider's free-tier quota.
const providerRPS = 2

// App holds the assembled service.
type App struct {
	Responder *chat.Responder
	Store     *knowledge.Store

	logger *slog.Logger
	warmup sync.WaitGroup
}

// Setup builds the full pipeline from configuration. The knowledge cache
// warms up in the background; requests arriving before it finishes see
// degraded (empty) retrieval rather than an error.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))

	// A missing or empty profile is survivable: the service starts with an
	// empty cache and retrieval degrades to no context.
	var chunks []knowledge.Chunk
	if profile, err := ingest.Load(cfg.KnowledgePath); err != nil {
		logger.Warn("knowledge unavailable, answering without retrieval context",
			"path", cfg.KnowledgePath,
			"error", err)
	} else {
		chunks = profile.Chunks(cfg.ChunkSize, cfg.ChunkOverlap)
		logger.Info("knowledge loaded",
			"path", cfg.KnowledgePath,
			"sections", len(profile.Sections),
			"chunks", len(chunks))
	}

	embedder := knowledge.NewGenkitEmbedder(googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel))
	store := knowledge.NewStore(embedder, chunks, logger,
		knowledge.WithEmbedTimeout(cfg.EmbedTimeout))

	guard := moderation.New(moderation.Config{
		Classifier: moderation.NewGenkitClassifier(g, cfg.ModerationModel),
		Logger:     logger,
		Enabled:    cfg.ModerationEnabled,
		Timeout:    cfg.ModerationTimeout,
	})

	responder := chat.NewResponder(chat.Config{
		Limiter:         ratelimit.New(cfg.RateLimit, cfg.RateWindow),
		Screen:          security.NewScreen(),
		Guard:           guard,
		Retriever:       store,
		Generator:       chat.NewGenkitGenerator(g, cfg.ModelName, cfg.Temperature, cfg.MaxTokens),
		Logger:          logger,
		TopK:            cfg.TopK,
		GenerateTimeout: cfg.GenerateTimeout,
		Retry:           chat.RetryConfig{MaxRetries: cfg.MaxRetries, InitialDelay: chat.DefaultRetryConfig().InitialDelay},
		ProviderLimiter: rate.NewLimiter(rate.Limit(providerRPS), providerRPS),
	})

	a := &App{Responder: responder, Store: store, logger: logger}
	a.warmup.Add(1)
	go func() {
		defer a.warmup.Done()
		if err := store.Initialize(ctx); err != nil {
			logger.Warn("knowledge warm-up failed, retrieval degraded", "error", err)
		}
	}()
	return a, nil
}

// Close waits for background work to settle.
func (a *App) Close() {
	a.warmup.Wait()
}
