package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/fprada/ferbot/internal/knowledge"
	"github.com/fprada/ferbot/internal/moderation"
	"github.com/fprada/ferbot/internal/security"
)

// RateLimiter admits or rejects a request for a client identity.
type RateLimiter interface {
	Allow(id string) bool
}

// Screener runs the lexical safety screen over a question.
type Screener interface {
	Check(text string) security.Verdict
}

// Moderator classifies a conversation turn against the safety taxonomy.
type Moderator interface {
	Check(ctx context.Context, role moderation.Role, text, question string) moderation.Verdict
}

// Retriever finds knowledge fragments relevant to a query.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) []knowledge.Result
}

// Config wires a Responder's collaborators and tuning.
type Config struct {
	Limiter   RateLimiter
	Screen    Screener
	Guard     Moderator
	Retriever Retriever
	Generator Generator
	Logger    *slog.Logger

	TopK            int
	GenerateTimeout time.Duration
	Retry           RetryConfig

	// ProviderLimiter throttles outbound model calls across all requests.
	// Optional.
	ProviderLimiter *rate.Limiter
}

// Responder runs the full question-answering pipeline for one request.
type Responder struct {
	cfg    Config
	logger *slog.Logger
}

// NewResponder builds a Responder. Limiter, Screen, Guard, Retriever, and
// Generator must all be set.
func NewResponder(cfg Config) *Responder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 60 * time.Second
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialDelay == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	return &Responder{cfg: cfg, logger: cfg.Logger}
}

// Respond answers a question for the identified client. The stages run in a
// fixed order: admission, lexical screen, input moderation, retrieval,
// generation, output moderation. Failures surface as the package's
// sentinel errors; soft findings accumulate as warnings on the result.
func (r *Responder) Respond(ctx context.Context, clientID string, req Request) (*Result, error) {
	start := time.Now()
	logger := r.logger.With("client", clientID)

	if !r.cfg.Limiter.Allow(clientID) {
		logger.Warn("request rate limited")
		return nil, ErrRateLimited
	}

	var warnings []string

	verdict := r.cfg.Screen.Check(req.Question)
	if !verdict.IsSafe {
		if verdict.Risk == security.RiskCritical {
			logger.Warn("question blocked by safety screen",
				"patterns", verdict.Patterns,
				"risk", string(verdict.Risk))
			return nil, &Blocked{Err: ErrInputBlocked, Reasons: verdict.Patterns}
		}
		logger.Info("question rejected as invalid", "issues", verdict.Issues)
		return nil, &Blocked{Err: ErrInputInvalid, Reasons: verdict.Issues}
	}
	warnings = append(warnings, verdict.Warnings...)
	if len(verdict.Patterns) > 0 {
		// Sub-critical injection signals pass through, flagged.
		warnings = append(warnings,
			fmt.Sprintf("suspicious input patterns detected: %s", strings.Join(verdict.Patterns, ", ")))
	}

	inVerdict := r.cfg.Guard.Check(ctx, moderation.RoleInput, req.Question, "")
	if !inVerdict.IsSafe {
		switch inVerdict.Risk {
		case moderation.RiskHigh, moderation.RiskCritical:
			logger.Warn("question blocked by moderation",
				"categories", inVerdict.BlockedCategories,
				"risk", string(inVerdict.Risk))
			return nil, &Blocked{Err: ErrContentBlocked, Reasons: inVerdict.BlockedNames}
		default:
			warnings = append(warnings,
				fmt.Sprintf("content flagged: %s", strings.Join(inVerdict.BlockedNames, ", ")))
		}
	}

	results := r.cfg.Retriever.Search(ctx, req.Question, r.cfg.TopK)
	sources := make([]Source, len(results))
	for i, res := range results {
		sources[i] = Source{
			ChunkID:    res.Chunk.ID,
			Similarity: res.Similarity,
			Excerpt:    res.Chunk.Text,
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, r.cfg.GenerateTimeout)
	defer cancel()
	gen, err := generateWithRetry(genCtx, r.cfg.Generator, r.cfg.ProviderLimiter, buildMessages(req, sources), r.cfg.Retry)
	if err != nil {
		logger.Error("generation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	// Any unsafe verdict on generated output replaces the answer; flagged
	// model text never reaches a client.
	answer := gen.Text
	outVerdict := r.cfg.Guard.Check(ctx, moderation.RoleOutput, answer, req.Question)
	if !outVerdict.IsSafe {
		logger.Warn("answer replaced by refusal",
			"categories", outVerdict.BlockedCategories,
			"risk", string(outVerdict.Risk))
		answer = RefusalMessage
		sources = nil
		warnings = append(warnings, "response was moderated for safety")
	}

	logger.Info("question answered",
		"sources", len(sources),
		"tokens", gen.TokensUsed,
		"warnings", len(warnings),
		"duration", time.Since(start))

	return &Result{
		Answer:     answer,
		Sources:    sources,
		Model:      gen.Model,
		Warnings:   warnings,
		TokensUsed: gen.TokensUsed,
	}, nil
}
