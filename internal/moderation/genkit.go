package moderation

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"google.golang.org/genai"
)

// GenkitClassifier runs moderation prompts against a genkit model. The
// model is called at temperature zero with a tight token cap since the
// expected response is at most two short lines.
type GenkitClassifier struct {
	g         *genkit.Genkit
	modelName string
}

// NewGenkitClassifier builds a classifier bound to the named model.
func NewGenkitClassifier(g *genkit.Genkit, modelName string) *GenkitClassifier {
	return &GenkitClassifier{g: g, modelName: modelName}
}

// Classify sends the framed prompt to the moderation model and returns the
// raw response text.
func (c *GenkitClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.modelName),
		ai.WithPrompt(prompt),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0),
			MaxOutputTokens: 100,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("moderation model call: %w", err)
	}
	return resp.Text(), nil
}
