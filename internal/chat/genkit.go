package chat

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"google.golang.org/genai"
)

// GenkitGenerator produces answers through a genkit-registered model.
type GenkitGenerator struct {
	g           *genkit.Genkit
	modelName   string
	temperature float32
	maxTokens   int
}

// NewGenkitGenerator binds a generator to the named model with fixed
// sampling parameters.
func NewGenkitGenerator(g *genkit.Genkit, modelName string, temperature float32, maxTokens int) *GenkitGenerator {
	return &GenkitGenerator{
		g:           g,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Generate runs the conversation through the model. Token usage comes from
// provider metadata when present, otherwise a character-count estimate.
func (gg *GenkitGenerator) Generate(ctx context.Context, messages []*ai.Message) (*Generation, error) {
	resp, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.modelName),
		ai.WithMessages(messages...),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(gg.temperature),
			MaxOutputTokens: int32(gg.maxTokens),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	text := resp.Text()
	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	if tokens == 0 {
		tokens = estimateTokens(text)
	}
	return &Generation{Text: text, Model: gg.modelName, TokensUsed: tokens}, nil
}
