package chat

import (
	"context"

	"github.com/firebase/genkit/go/ai"
)

// Message is one prior conversation turn supplied by the client.
type Message struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// Request is a question to answer.
type Request struct {
	Question string    `json:"question"`
	Language string    `json:"language,omitempty"` // "es" (default) or "en"
	History  []Message `json:"history,omitempty"`
}

// Source identifies a knowledge fragment that grounded the answer.
type Source struct {
	ChunkID    int     `json:"chunk_id"`
	Similarity float64 `json:"similarity"`
	Excerpt    string  `json:"excerpt"`
}

// Result is a completed pipeline run.
type Result struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources,omitempty"`
	Model      string   `json:"model"`
	Warnings   []string `json:"warnings,omitempty"`
	TokensUsed int      `json:"tokens_used"`
}

// Generation is one model completion with its token accounting.
type Generation struct {
	Text       string
	Model      string
	TokensUsed int
}

// Generator produces a completion for an assembled conversation.
type Generator interface {
	Generate(ctx context.Context, messages []*ai.Message) (*Generation, error)
}
